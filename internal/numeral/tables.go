package numeral

// Tier is a power-of-ten grouping in the positional decomposition.
type Tier int

const (
	Ones Tier = iota
	Tens
	Hundreds
	Thousands
	TenThousands
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case Ones:
		return "ones"
	case Tens:
		return "tens"
	case Hundreds:
		return "hundreds"
	case Thousands:
		return "thousands"
	case TenThousands:
		return "ten-thousands"
	default:
		return "unknown"
	}
}

// atoms holds every spoken fragment for one alphabet.
type atoms struct {
	zero string
	// digit readings as spoken inside a number (4, 7 and 9 use よん/なな/きゅう).
	digits [10]string
	// tier base words, indexed by Tier. Ones has no word.
	word [5]string
	// irregular contracted forms keyed by tier and leading digit.
	irregular map[Tier]map[int]string
}

var kanaAtoms = atoms{
	zero:   "ぜろ",
	digits: [10]string{"", "いち", "に", "さん", "よん", "ご", "ろく", "なな", "はち", "きゅう"},
	word:   [5]string{"", "じゅう", "ひゃく", "せん", "まん"},
	irregular: map[Tier]map[int]string{
		Thousands: {
			1: "せん",
			3: "さんぜん",
			8: "はっせん",
		},
		Hundreds: {
			1: "ひゃく",
			3: "さんびゃく",
			6: "ろっぴゃく",
			8: "はっぴゃく",
		},
	},
}

var romajiAtoms = atoms{
	zero:   "zero",
	digits: [10]string{"", "ichi", "ni", "san", "yon", "go", "roku", "nana", "hachi", "kyuu"},
	word:   [5]string{"", "juu", "hyaku", "sen", "man"},
	irregular: map[Tier]map[int]string{
		Thousands: {
			1: "sen",
			3: "sanzen",
			8: "hassen",
		},
		Hundreds: {
			1: "hyaku",
			3: "sanbyaku",
			6: "roppyaku",
			8: "happyaku",
		},
	},
}

// ones returns the reading of digit d as spoken inside a number.
func (a *atoms) ones(d int) string {
	return a.digits[d]
}

// tierAtom renders a non-zero leading digit for Hundreds or Thousands, consulting the
// irregular table first.
func (a *atoms) tierAtom(t Tier, d int) string {
	if s, ok := a.irregular[t][d]; ok {
		return s
	}
	return a.ones(d) + a.word[t]
}

// tensAtom renders a non-zero tens digit. A leading one is never spoken.
func (a *atoms) tensAtom(d int) string {
	if d == 1 {
		return a.word[Tens]
	}
	return a.ones(d) + a.word[Tens]
}
