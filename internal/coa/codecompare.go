package coa

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Account codes are dot-segmented ("1.10.2"). Plain lexical ordering puts
// "1.10" before "1.2", so segments are compared soft-numerically: numeric
// against numeric as integers, anything else through the collator.

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und, collate.Numeric)
)

func collateStrings(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// CompareCodes orders two account codes segment by segment.
func CompareCodes(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aok := parseSegment(as[i])
		bn, bok := parseSegment(bs[i])
		switch {
		case aok && bok:
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
		default:
			if c := collateStrings(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

func parseSegment(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
