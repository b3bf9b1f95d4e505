// Package keywords maps test-automation keyword names onto facade calls.
//
// Keyword arguments arrive as loosely typed values (usually strings) from a
// remote test harness; each keyword converts them, runs one facade
// operation, and returns a JSON-friendly result.
package keywords

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leafsii/kvkeywords/pkg/facade"
)

// ConnectKeyword is the one keyword that opens a connection instead of
// running against one.
const ConnectKeyword = "Connect To Redis"

// ErrUnknownKeyword is returned for names that match no keyword
var ErrUnknownKeyword = errors.New("no keyword with that name")

// ArgumentError reports arguments a keyword could not accept
type ArgumentError struct {
	Keyword string
	Msg     string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("keyword '%s': %s", e.Keyword, e.Msg)
}

type runFunc func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error)

// Keyword describes one library keyword
type Keyword struct {
	Name string
	// Args uses the name or name=default convention
	Args []string
	Doc  string

	run runFunc
}

// Library is the set of keywords bound to one facade
type Library struct {
	facade   *facade.Facade
	defaults facade.ConnectOptions
	keywords map[string]*Keyword
	names    []string
}

// NewLibrary binds the builtin keywords to f. defaults supplies the backend
// and dial timeout for every connection, which keyword callers cannot set.
func NewLibrary(f *facade.Facade, defaults facade.ConnectOptions) *Library {
	l := &Library{
		facade:   f,
		defaults: defaults,
		keywords: make(map[string]*Keyword),
	}
	for _, kw := range builtinKeywords() {
		kw := kw
		l.keywords[normalize(kw.Name)] = &kw
		l.names = append(l.names, kw.Name)
	}
	return l
}

// normalize folds case and drops spaces and underscores, so
// "get_from_redis_string" finds "Get From Redis String".
func normalize(name string) string {
	name = strings.ToLower(name)
	return strings.NewReplacer(" ", "", "_", "").Replace(name)
}

// Names lists keyword names in declaration order
func (l *Library) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Keyword looks a keyword up by name
func (l *Library) Keyword(name string) (*Keyword, bool) {
	kw, ok := l.keywords[normalize(name)]
	return kw, ok
}

// IsConnect reports whether name refers to the connect keyword
func IsConnect(name string) bool {
	return normalize(name) == normalize(ConnectKeyword)
}

// Connect runs the connect keyword: redis_host, redis_port=6379, db=0,
// redis_password.
func (l *Library) Connect(ctx context.Context, args []string) (*facade.Connection, error) {
	kw, _ := l.Keyword(ConnectKeyword)
	values, err := bind(kw, args)
	if err != nil {
		return nil, err
	}

	port, err := toInt(kw, "redis_port", values[1])
	if err != nil {
		return nil, err
	}
	db, err := toInt(kw, "db", values[2])
	if err != nil {
		return nil, err
	}

	opts := l.defaults
	opts.Host = values[0]
	opts.Port = port
	opts.Keyspace = db
	opts.Password = values[3]

	return l.facade.Connect(ctx, opts)
}

// Run executes a data keyword against conn
func (l *Library) Run(ctx context.Context, conn *facade.Connection, name string, args []string) (any, error) {
	kw, ok := l.Keyword(name)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownKeyword, name)
	}
	if kw.run == nil {
		return nil, &ArgumentError{Keyword: kw.Name, Msg: "opens a connection and cannot run against one"}
	}

	values, err := bind(kw, args)
	if err != nil {
		return nil, err
	}
	return kw.run(ctx, l.facade, conn, values)
}

// bind checks the argument count and fills in defaults
func bind(kw *Keyword, args []string) ([]string, error) {
	if len(args) > len(kw.Args) {
		return nil, &ArgumentError{
			Keyword: kw.Name,
			Msg:     fmt.Sprintf("expected at most %d arguments, got %d", len(kw.Args), len(args)),
		}
	}

	values := make([]string, len(kw.Args))
	for i, arg := range kw.Args {
		if i < len(args) {
			values[i] = args[i]
			continue
		}
		name, def, hasDefault := strings.Cut(arg, "=")
		if !hasDefault {
			return nil, &ArgumentError{
				Keyword: kw.Name,
				Msg:     fmt.Sprintf("missing required argument '%s'", name),
			}
		}
		values[i] = def
	}
	return values, nil
}

// ErrorType names the error class a harness should report
func ErrorType(err error) string {
	var (
		connErr   *facade.ConnectionError
		opErr     *facade.OperationError
		assertErr *facade.KeyAssertionError
		argErr    *ArgumentError
	)
	switch {
	case errors.As(err, &assertErr):
		return "KeyAssertionError"
	case errors.As(err, &connErr):
		return "ConnectionError"
	case errors.As(err, &opErr):
		return "OperationError"
	case errors.As(err, &argErr):
		return "ArgumentError"
	case errors.Is(err, facade.ErrConnectionClosed), errors.Is(err, ErrUnknownKeyword):
		return "UsageError"
	default:
		return "Error"
	}
}
