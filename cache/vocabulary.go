package cache

// CommonVocabulary returns built-in Bangla glosses for very common English
// words. Used to seed a cache so frequent words never hit the network.
func CommonVocabulary() map[string]string {
	return map[string]string{
		"the":     "দ্য (নির্দিষ্ট)",
		"a":       "একটি",
		"an":      "একটি",
		"is":      "হয়/আছে",
		"are":     "হয়/আছে",
		"was":     "ছিল",
		"were":    "ছিল",
		"have":    "আছে",
		"has":     "আছে",
		"had":     "ছিল",
		"do":      "করা",
		"go":      "যাওয়া",
		"come":    "আসা",
		"see":     "দেখা",
		"look":    "দেখা",
		"know":    "জানা",
		"think":   "ভাবা",
		"take":    "নেওয়া",
		"make":    "তৈরি করা",
		"get":     "পাওয়া",
		"give":    "দেওয়া",
		"and":     "এবং",
		"or":      "অথবা",
		"but":     "কিন্তু",
		"if":      "যদি",
		"because": "কারণ",
		"good":    "ভালো",
		"new":     "নতুন",
		"first":   "প্রথম",
		"last":    "শেষ",
		"long":    "লম্বা",
		"great":   "দুর্দান্ত",
		"little":  "ছোট",
		"i":       "আমি",
		"you":     "তুমি/আপনি",
		"he":      "সে",
		"she":     "সে",
		"we":      "আমরা",
		"they":    "তারা",
	}
}
