package analysis

import (
	"context"
	"errors"

	"github.com/sahaj-english/sahaj/parse"
	"github.com/sahaj-english/sahaj/provider"
)

// Outcome is the result of Run. Exactly one of Stable and Analysis is set,
// depending on whether the mode uses the pipe protocol.
type Outcome struct {
	Provider provider.ID    `json:"provider"`
	Mode     provider.Mode  `json:"mode"`
	Stable   *StableResult  `json:"stable,omitempty"`
	Analysis parse.Analysis `json:"analysis,omitempty"`
}

// Run dispatches req to Stable or Analyze by mode. An empty mode means
// analysis.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.Mode == "" {
		req.Mode = provider.ModeAnalysis
	}
	if req.Provider == "" {
		req.Provider = provider.GoogleTranslate
	}
	out := &Outcome{Provider: req.Provider, Mode: req.Mode}

	if req.Mode.Pipe() {
		res, err := s.Stable(ctx, req)
		if err != nil {
			return nil, err
		}
		out.Stable = res
		return out, nil
	}

	a, err := s.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	out.Analysis = a
	return out, nil
}

// IsInvalidRequest reports whether err was caused by the request itself
// rather than by a provider.
func IsInvalidRequest(err error) bool {
	for _, target := range []error{
		ErrEmptyText,
		ErrWrongMode,
		provider.ErrUnknownProvider,
		provider.ErrMissingCredential,
		provider.ErrUnknownMode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsDecode reports whether err means a provider answered with something
// that could not be turned into a result.
func IsDecode(err error) bool {
	return provider.IsDecode(err) ||
		errors.Is(err, parse.ErrInvalidJSON) ||
		errors.Is(err, parse.ErrMissingSentences)
}
