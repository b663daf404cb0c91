package query

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var comparisonOps = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
}

// Builder accumulates the parts of a read query. Each step only touches its own part,
// so the five steps may run in any order. A Builder is used by one request and is not
// safe for concurrent use.
type Builder struct {
	cfg        Config
	filter     bson.M
	search     bson.A
	searchTerm string
	sortKeys   []SortKey
	projection bson.D
	page       int
	limit      int
	issues     []ParamIssue
}

// NewBuilder returns a Builder primed with defaults: empty filter, default sort,
// version field excluded, first page of DefaultLimit.
func NewBuilder(cfg Config) *Builder {
	cfg = cfg.normalized()
	return &Builder{
		cfg:        cfg,
		filter:     bson.M{},
		sortKeys:   append([]SortKey(nil), cfg.DefaultSort...),
		projection: bson.D{{Key: cfg.VersionField, Value: 0}},
		page:       1,
		limit:      cfg.DefaultLimit,
	}
}

// Build runs all five steps over params and returns the composed result.
func Build(cfg Config, params Params) Result {
	return NewBuilder(cfg).
		Filter(params).
		Search(params).
		Sort(params).
		LimitFields(params).
		Paginate(params).
		Build()
}

// Filter copies every non-reserved parameter into the filter. field[gt|gte|lt|lte]=v
// becomes a comparison; anything else is equality.
func (b *Builder) Filter(params Params) *Builder {
	filter := bson.M{}
	keys := sortedKeys(params)
	for _, key := range keys {
		raw := params[key]
		if IsReserved(key) {
			continue
		}

		field, op, ok := splitOperator(key)
		if !ok {
			b.issue(key, raw, "unsupported operator")
			continue
		}
		if IsReserved(field) {
			continue
		}
		if !validField(field) {
			b.issue(key, raw, "invalid field name")
			continue
		}

		value, ok := b.cast(field, raw)
		if !ok {
			b.issue(key, raw, "value does not match field type")
			continue
		}

		mergeCondition(filter, field, op, value)
	}
	b.filter = filter
	return b
}

// Search adds a case-insensitive substring match of q across the search fields.
func (b *Builder) Search(params Params) *Builder {
	b.search = nil
	b.searchTerm = ""

	raw, ok := params[ParamSearch]
	if !ok {
		return b
	}
	term := strings.TrimSpace(raw)
	if term == "" {
		return b
	}
	if runes := []rune(term); len(runes) > b.cfg.MaxSearchLength {
		term = string(runes[:b.cfg.MaxSearchLength])
		b.issue(ParamSearch, raw, "search term truncated")
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	clauses := make(bson.A, 0, len(b.cfg.SearchFields))
	for _, field := range b.cfg.SearchFields {
		clauses = append(clauses, bson.M{field: pattern})
	}
	b.search = clauses
	b.searchTerm = term
	return b
}

// Sort reads a comma separated field list; a leading '-' sorts descending.
func (b *Builder) Sort(params Params) *Builder {
	raw, ok := params[ParamSort]
	if !ok || strings.TrimSpace(raw) == "" {
		b.sortKeys = append([]SortKey(nil), b.cfg.DefaultSort...)
		return b
	}

	keys := parseSort(raw)
	if len(keys) == 0 {
		literal := strings.TrimSpace(raw)
		if validField(literal) {
			keys = []SortKey{{Field: literal}}
		} else {
			b.issue(ParamSort, raw, "no usable sort field")
			keys = append([]SortKey(nil), b.cfg.DefaultSort...)
		}
	}
	b.sortKeys = keys
	return b
}

// LimitFields builds the projection from a comma separated field list. A list made only
// of '-'-prefixed names excludes them; otherwise the plain names are included.
func (b *Builder) LimitFields(params Params) *Builder {
	def := bson.D{{Key: b.cfg.VersionField, Value: 0}}

	raw, ok := params[ParamFields]
	if !ok || strings.TrimSpace(raw) == "" {
		b.projection = def
		return b
	}

	var include, exclude []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		negated := strings.HasPrefix(name, "-")
		if negated {
			name = strings.TrimSpace(name[1:])
		}
		if !validField(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if negated {
			exclude = append(exclude, name)
		} else {
			include = append(include, name)
		}
	}

	switch {
	case len(include) > 0:
		if len(exclude) > 0 {
			b.issue(ParamFields, raw, "exclusions ignored in inclusion projection")
		}
		b.projection = projectionOf(include, 1)
	case len(exclude) > 0:
		b.projection = projectionOf(exclude, 0)
	default:
		literal := strings.TrimSpace(raw)
		if validField(literal) {
			b.projection = bson.D{{Key: literal, Value: 1}}
		} else {
			b.issue(ParamFields, raw, "no usable projection field")
			b.projection = def
		}
	}
	return b
}

// Paginate reads page and limit. Anything below 1 or non-numeric falls back to the
// defaults; limit is capped at MaxLimit and page at the last one whose skip fits in an int64.
func (b *Builder) Paginate(params Params) *Builder {
	b.page = b.positive(params, ParamPage, 1)
	b.limit = b.positive(params, ParamLimit, b.cfg.DefaultLimit)
	if b.limit > b.cfg.MaxLimit {
		b.issue(ParamLimit, params[ParamLimit], "limit capped")
		b.limit = b.cfg.MaxLimit
	}
	if last := math.MaxInt64 / int64(b.limit); int64(b.page-1) > last {
		b.issue(ParamPage, params[ParamPage], "page capped")
		b.page = int(last + 1)
	}
	return b
}

// Issues returns every parameter that was dropped or defaulted so far.
func (b *Builder) Issues() []ParamIssue {
	return append([]ParamIssue(nil), b.issues...)
}

// Build composes the filter AND the search with the projection, sort and pagination window.
func (b *Builder) Build() Result {
	base := make(bson.M, len(b.filter))
	for k, v := range b.filter {
		base[k] = v
	}

	filter := base
	if len(b.search) > 0 {
		or := bson.M{"$or": b.search}
		if len(base) == 0 {
			filter = or
		} else {
			filter = bson.M{"$and": bson.A{base, or}}
		}
	}

	projection := make(bson.D, len(b.projection))
	copy(projection, b.projection)

	return Result{
		Query: Query{
			Filter:     filter,
			SortKeys:   append([]SortKey(nil), b.sortKeys...),
			Projection: projection,
			Skip:       int64(b.page-1) * int64(b.limit),
			Limit:      int64(b.limit),
			SearchTerm: b.searchTerm,
		},
		Page:  b.page,
		Limit: b.limit,
	}
}

func (b *Builder) positive(params Params, key string, def int) int {
	raw, ok := params[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		b.issue(key, raw, "not a positive integer")
		return def
	}
	return n
}

func (b *Builder) cast(field, raw string) (interface{}, bool) {
	switch b.cfg.Schema[field] {
	case KindNumber:
		s := strings.TrimSpace(raw)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case KindBool:
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, false
		}
		return v, true
	case KindDate:
		s := strings.TrimSpace(raw)
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), true
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, false
		}
		return t.UTC(), true
	default:
		return raw, true
	}
}

func (b *Builder) issue(key, value, reason string) {
	b.issues = append(b.issues, ParamIssue{Key: key, Value: value, Reason: reason})
}

// splitOperator parses "field[op]". ok is false for a bracket suffix naming an
// operator outside gt/gte/lt/lte.
func splitOperator(key string) (field, op string, ok bool) {
	if !strings.HasSuffix(key, "]") {
		return key, "", true
	}
	open := strings.LastIndexByte(key, '[')
	if open < 0 {
		return key, "", true
	}
	mongoOp, known := comparisonOps[key[open+1:len(key)-1]]
	if !known {
		return "", "", false
	}
	return key[:open], mongoOp, true
}

// mergeCondition adds one condition for field. Equality next to comparisons becomes $eq
// so the result does not depend on parameter order.
func mergeCondition(filter bson.M, field, op string, value interface{}) {
	existing, present := filter[field]
	if op == "" {
		if ops, isOps := existing.(bson.M); present && isOps {
			ops["$eq"] = value
			return
		}
		filter[field] = value
		return
	}

	ops, isOps := existing.(bson.M)
	if !isOps {
		ops = bson.M{}
		if present {
			ops["$eq"] = existing
		}
		filter[field] = ops
	}
	ops[op] = value
}

func parseSort(raw string) []SortKey {
	var keys []SortKey
	seen := map[string]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		desc := false
		switch {
		case strings.HasPrefix(name, "-"):
			desc = true
			name = strings.TrimSpace(name[1:])
		case strings.HasPrefix(name, "+"):
			name = strings.TrimSpace(name[1:])
		}
		if !validField(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		keys = append(keys, SortKey{Field: name, Desc: desc})
	}
	return keys
}

func projectionOf(fields []string, value int) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		d = append(d, bson.E{Key: f, Value: value})
	}
	return d
}

func sortedKeys(params Params) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
