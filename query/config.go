package query

// FieldKind tells the builder how to cast a raw parameter for a field, mirroring the
// casting a document ODM performs against its schema.
type FieldKind int

const (
	// KindString keeps the raw value. Fields missing from the schema use it.
	KindString FieldKind = iota
	// KindNumber parses integers first, then floats.
	KindNumber
	// KindBool parses strconv booleans.
	KindBool
	// KindDate parses RFC 3339 timestamps or YYYY-MM-DD dates.
	KindDate
)

// Config bounds what a Builder may produce.
type Config struct {
	DefaultLimit    int
	MaxLimit        int
	MaxSearchLength int
	DefaultSort     []SortKey
	VersionField    string
	SearchFields    []string
	Schema          map[string]FieldKind
}

// DefaultConfig returns the job listing defaults: 10 per page, at most 100, newest first,
// search over title, description and skills.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:    10,
		MaxLimit:        100,
		MaxSearchLength: 100,
		DefaultSort:     []SortKey{{Field: "createdAt", Desc: true}},
		VersionField:    "__v",
		SearchFields:    []string{"title", "description", "skills"},
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = def.DefaultLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = def.MaxLimit
	}
	if c.MaxLimit < c.DefaultLimit {
		c.MaxLimit = c.DefaultLimit
	}
	if c.MaxSearchLength <= 0 {
		c.MaxSearchLength = def.MaxSearchLength
	}
	if len(c.DefaultSort) == 0 {
		c.DefaultSort = def.DefaultSort
	}
	if c.VersionField == "" {
		c.VersionField = def.VersionField
	}
	if len(c.SearchFields) == 0 {
		c.SearchFields = def.SearchFields
	}
	return c
}
