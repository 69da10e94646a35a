package normalize

// legalTerms is the maintained table of legal-entity designations that
// carry no brand identity. Matching is case-insensitive and applies to
// leading or trailing tokens only, so "Chatime Canada Ltd." reduces to
// "Chatime Canada" while an interior token is left alone.
var legalTerms = map[string]struct{}{
	"ab":           {},
	"ag":           {},
	"bv":           {},
	"b.v.":         {},
	"co":           {},
	"co.":          {},
	"company":      {},
	"corp":         {},
	"corp.":        {},
	"corporation":  {},
	"gmbh":         {},
	"inc":          {},
	"inc.":         {},
	"incorporated": {},
	"kg":           {},
	"llc":          {},
	"l.l.c.":       {},
	"llp":          {},
	"limited":      {},
	"ltd":          {},
	"ltd.":         {},
	"oy":           {},
	"plc":          {},
	"pty":          {},
	"pty.":         {},
	"sa":           {},
	"s.a.":         {},
	"sarl":         {},
	"s.a.r.l.":     {},
	"srl":          {},
	"s.r.l.":       {},
	"ulc":          {},
}
