package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " BN-bd ", want: "bn-BD"},
		{in: "bn", want: "bn"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("bangla", func(t *testing.T) {
		got := Resolve("bn")
		if got.Name != "Bangla" || got.Native != "বাংলা" || got.Flag == "" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("normalized region", func(t *testing.T) {
		got := Resolve("bn_bd")
		if got.Code != "bn-BD" || got.Flag == "" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("malformed passthrough", func(t *testing.T) {
		got := Resolve("not a tag")
		if got.Name != "not a tag" || got.Flag != "" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})
}
