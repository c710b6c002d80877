package typefields

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-polyfields/pkg/fieldconfig"
	"github.com/goliatone/go-polyfields/pkg/form"
	"github.com/goliatone/go-polyfields/pkg/model"
)

// ErrNotFound is returned by loaders for missing records.
var ErrNotFound = errors.New("typefields: record not found")

// HTTPError is an error carrying the HTTP status the handler answers with.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with an HTTP status code.
type StatusError struct {
	Code int
	Err  error
}

// Error returns the wrapped message, or the status text when Err is nil.
func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

// Unwrap returns the wrapped error.
func (e StatusError) Unwrap() error { return e.Err }

// StatusCode returns Code, or 500 when Code is not set.
func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds a net/http handler from a pre-constructed Options value.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	prefix := mountPath("", opts.RoutePath)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeError(w, opts.Logger, err, http.StatusForbidden)
				return
			}
		}

		markup, err := serve(r, prefix, opts)
		if err != nil {
			writeError(w, opts.Logger, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write([]byte(markup))
	})
}

type route struct {
	segment string
	id      int64
	edit    bool
}

func parseRoute(path, prefix string) (route, error) {
	rest, ok := strings.CutPrefix(path, strings.TrimRight(prefix, "/"))
	if !ok || !strings.HasPrefix(rest, "/") {
		return route{}, StatusError{Code: http.StatusNotFound}
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 2 && parts[1] == "new" && parts[0] != "":
		return route{segment: parts[0]}, nil
	case len(parts) == 3 && parts[2] == "edit" && parts[0] != "":
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || id <= 0 {
			return route{}, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("typefields: invalid id %q", parts[1])}
		}
		return route{segment: parts[0], id: id, edit: true}, nil
	default:
		return route{}, StatusError{Code: http.StatusNotFound}
	}
}

func serve(r *http.Request, prefix string, opts Options) (string, error) {
	rt, err := parseRoute(r.URL.Path, prefix)
	if err != nil {
		return "", err
	}
	if opts.Types == nil {
		return "", errors.New("typefields: no type source configured")
	}

	t, ok := opts.Types.ByRoute(rt.segment, opts.TypePaths)
	if !ok {
		return "", StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("typefields: unknown type segment %q", rt.segment)}
	}

	var fields []fieldconfig.Field
	if opts.Fields != nil {
		if def, ok := opts.Fields.Type(t.Name); ok {
			fields = def.Fields
		}
	}

	rec := t.Instantiate()
	if rt.edit {
		if opts.Loader == nil {
			return "", StatusError{Code: http.StatusNotFound, Err: errors.New("typefields: no loader configured")}
		}
		loaded, err := opts.Loader(r.Context(), t, rt.id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", StatusError{Code: http.StatusNotFound, Err: err}
			}
			return "", err
		}
		if model.IsNil(loaded) {
			return "", StatusError{Code: http.StatusNotFound, Err: ErrNotFound}
		}
		rec = loaded
	}

	name := strings.TrimSpace(r.URL.Query().Get(opts.NameParam))
	if name == "" {
		name = t.Singular()
	}

	f, err := form.New(nil, "", opts.FormOptions...)
	if err != nil {
		return "", err
	}
	b := f.BuilderFor(name, rec)
	if err := fieldconfig.Render(b, fields); err != nil {
		return "", err
	}
	if rt.edit {
		if err := b.Input("id", form.InputOptions{As: form.Hidden, Value: rt.id}); err != nil {
			return "", err
		}
	}

	opts.Logger.Debug("type fields rendered",
		zap.String("type", t.Name),
		zap.Bool("edit", rt.edit),
		zap.Int("fields", len(fields)),
	)
	return b.String(), nil
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error, fallback int) {
	if w == nil {
		return
	}
	code := fallback
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = fallback
		}
	}
	if code >= http.StatusInternalServerError {
		logger.Error("type fields request failed", zap.Error(err))
	}
	http.Error(w, http.StatusText(code), code)
}
