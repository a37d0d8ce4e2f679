package respond

import (
	"strconv"
	"strings"
)

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. Missing or invalid
// q parameters count as 1.0; a bare type is treated as type/*.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		params := strings.Split(part, ";")
		mediaType := strings.ToLower(strings.TrimSpace(params[0]))
		if mediaType == "" {
			continue
		}

		mr := mediaRange{q: 1.0}
		if typ, subtype, ok := strings.Cut(mediaType, "/"); ok {
			mr.typ, mr.subtype = strings.TrimSpace(typ), strings.TrimSpace(subtype)
		} else {
			mr.typ, mr.subtype = mediaType, "*"
		}

		for _, p := range params[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "q") {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && q >= 0 && q <= 1 {
				mr.q = q
			}
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// specificity ranks how closely a media range names format: problem+format
// beats the base type, which beats a structured-suffix wildcard, which beats
// plain wildcards. Zero means no match.
func specificity(mr mediaRange, format string) int {
	switch {
	case mr.typ == "*" && mr.subtype == "*":
		return 1
	case mr.typ != "application":
		return 0
	case mr.subtype == "*":
		return 1
	case mr.subtype == "*+"+format:
		return 2
	case mr.subtype == format:
		return 3
	case mr.subtype == "problem+"+format:
		return 4
	}
	return 0
}

// rank returns the q-value of the most specific range matching format.
func rank(ranges []mediaRange, format string) (q float64, level int) {
	for _, mr := range ranges {
		s := specificity(mr, format)
		if s == 0 {
			continue
		}
		if s > level || (s == level && mr.q > q) {
			q, level = mr.q, s
		}
	}
	return q, level
}

// prefersCBOR reports whether the client ranks CBOR above JSON. q-values
// decide first and specificity breaks ties; JSON wins anything left over.
func prefersCBOR(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return false
	}
	ranges := parseAccept(accept)
	cborQ, cborSpec := rank(ranges, "cbor")
	if cborQ <= 0 {
		return false
	}
	jsonQ, jsonSpec := rank(ranges, "json")
	if cborQ != jsonQ {
		return cborQ > jsonQ
	}
	return cborSpec > jsonSpec
}
