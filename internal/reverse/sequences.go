// internal/reverse/sequences.go
package reverse

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/arwahdevops/oradelta/internal/delta"
)

var (
	startWith   = regexp.MustCompile(`START WITH\s+([\w.-]+)`)
	sharingLink = regexp.MustCompile(`\s+LINK$`)
)

// flagKeywords maps the Y/N dictionary flags onto option keywords.
var flagKeywords = map[string][2]string{
	"cycle":  {"cycle", "nocycle"},
	"order":  {"order", "noorder"},
	"shard":  {"shard", "noshard"},
	"scale":  {"scale", "noscale"},
	"type":   {"session", "global"},
	"keep":   {"keep", "nokeep"},
	"extend": {"extend", "noextend"},
}

func flagKeyword(option, flag string) string {
	kw, ok := flagKeywords[option]
	if !ok {
		return ""
	}
	switch strings.ToUpper(strings.TrimSpace(flag)) {
	case "Y":
		return kw[0]
	case "N":
		return kw[1]
	}
	return ""
}

// MapSequence turns a dictionary row into the sequence shape used by the
// delta model.
func MapSequence(raw RawSequence) delta.Sequence {
	minValue := delta.NumberOf(raw.MinValue)
	maxValue := delta.NumberOf(raw.MaxValue)
	cacheValue := delta.NumberOf(raw.CacheValue)

	cache := "nocache"
	if cacheValue.IsSet() && !isZero(raw.CacheValue) {
		cache = "cache"
	}

	extend := flagKeyword("extend", raw.Extend)
	scaleExtend, shardExtend := "", ""
	if strings.EqualFold(raw.Scale, "Y") {
		scaleExtend = extend
	}
	if strings.EqualFold(raw.Shard, "Y") {
		shardExtend = extend
	}

	return delta.Sequence{
		SequenceName: raw.SequenceName,
		Sharing:      strings.ToLower(sharingLink.ReplaceAllString(strings.TrimSpace(raw.Sharing), "")),
		Increment:    delta.NumberOf(raw.Increment),
		Start:        startValue(raw.DDLScript, minValue, maxValue),
		MinValue:     minValue,
		MaxValue:     maxValue,
		Cache:        cache,
		CacheValue:   cacheValue,
		Cycle:        flagKeyword("cycle", raw.Cycle),
		Order:        flagKeyword("order", raw.Order),
		Keep:         flagKeyword("keep", raw.Keep),
		Scale:        flagKeyword("scale", raw.Scale),
		ScaleExtend:  scaleExtend,
		Shard:        flagKeyword("shard", raw.Shard),
		ShardExtend:  shardExtend,
		Type:         flagKeyword("type", raw.Session),
	}
}

// startValue reads START WITH from the generated DDL; without it the
// sequence starts at the lower of its bounds.
func startValue(ddlScript string, minValue, maxValue delta.Number) delta.Number {
	m := startWith.FindStringSubmatch(ddlScript)
	if m == nil {
		return delta.Min(minValue, maxValue)
	}
	return delta.NumberOf(m[1])
}

func isZero(s string) bool {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	return err == nil && d.IsZero()
}
