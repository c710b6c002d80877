package typefields

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-polyfields/pkg/fieldconfig"
	"github.com/goliatone/go-polyfields/pkg/form"
	"github.com/goliatone/go-polyfields/pkg/model"
	"github.com/goliatone/go-polyfields/pkg/testsupport"
)

const typesYAML = `
types:
  - name: ImageBlock
    fields:
      - name: url
      - name: caption
        as: text
  - name: Person
    fields:
      - name: full_name
`

func fixture(t *testing.T) (*model.Registry, *fieldconfig.Store) {
	t.Helper()
	store, err := fieldconfig.LoadFS(fstest.MapFS{"types.yaml": {Data: []byte(typesYAML)}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	registry, err := store.Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return registry, store
}

func loader(_ context.Context, typ model.Type, id int64) (model.Record, error) {
	if id != 7 {
		return nil, ErrNotFound
	}
	return model.NewEntity(typ.Name).WithID(id).Set("url", "/img/7.png").Set("caption", "<b>Hi</b>"), nil
}

func serveRequest(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerNewFields(t *testing.T) {
	registry, store := fixture(t)
	h := Handler(WithTypes(registry), WithFields(store))

	rec := serveRequest(h, http.MethodGet, "/admin/image_blocks/new?name=page%5Bsections_attributes%5D%5B2%5D%5Bitem_attributes%5D")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content-type, got %q", ct)
	}

	nodes := testsupport.ParseFragment(t, rec.Body.String())
	for _, name := range []string{
		"page[sections_attributes][2][item_attributes][url]",
		"page[sections_attributes][2][item_attributes][caption]",
	} {
		if len(testsupport.FindAll(nodes, testsupport.ByAttr("name", name))) != 1 {
			t.Fatalf("expected field %s in:\n%s", name, rec.Body.String())
		}
	}
	if strings.Contains(rec.Body.String(), "[id]") {
		t.Fatalf("new fields must not carry an id")
	}
}

func TestHandlerEditFields(t *testing.T) {
	registry, store := fixture(t)
	h := Handler(WithTypes(registry), WithFields(store), WithLoader(loader))

	rec := serveRequest(h, http.MethodGet, "/admin/image_blocks/7/edit")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	nodes := testsupport.ParseFragment(t, rec.Body.String())

	url := testsupport.FindAll(nodes, testsupport.ByAttr("name", "image_block[url]"))
	if len(url) != 1 {
		t.Fatalf("expected url field rooted at the type name:\n%s", rec.Body.String())
	}
	if v, _ := testsupport.Attr(url[0], "value"); v != "/img/7.png" {
		t.Fatalf("expected loaded value, got %q", v)
	}
	caption := testsupport.FindAll(nodes, testsupport.ByTag("textarea"))
	if len(caption) != 1 || testsupport.Text(caption[0]) != "<b>Hi</b>" {
		t.Fatalf("expected escaped caption")
	}
	if len(testsupport.FindAll(nodes, testsupport.ByAttr("name", "image_block[id]"))) != 1 {
		t.Fatalf("expected hidden id on edit fields")
	}
}

func TestHandlerErrors(t *testing.T) {
	registry, store := fixture(t)
	h := Handler(WithTypes(registry), WithFields(store), WithLoader(loader))

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{name: "unknown type", method: http.MethodGet, target: "/admin/widgets/new", want: http.StatusNotFound},
		{name: "missing record", method: http.MethodGet, target: "/admin/people/9/edit", want: http.StatusNotFound},
		{name: "bad id", method: http.MethodGet, target: "/admin/people/abc/edit", want: http.StatusBadRequest},
		{name: "unknown action", method: http.MethodGet, target: "/admin/people/7/show", want: http.StatusNotFound},
		{name: "other prefix", method: http.MethodGet, target: "/administrators/new", want: http.StatusNotFound},
		{name: "method", method: http.MethodPost, target: "/admin/people/new", want: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serveRequest(h, tt.method, tt.target); rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestHandlerLoaderFailure(t *testing.T) {
	registry, store := fixture(t)
	h := Handler(WithTypes(registry), WithFields(store), WithLoader(func(context.Context, model.Type, int64) (model.Record, error) {
		return nil, errors.New("db down")
	}))
	if rec := serveRequest(h, http.MethodGet, "/admin/people/1/edit"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestHandlerHeadAndGuard(t *testing.T) {
	registry, store := fixture(t)

	h := Handler(WithTypes(registry), WithFields(store))
	rec := serveRequest(h, http.MethodHead, "/admin/people/new")
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200 for HEAD, got %d with %d bytes", rec.Code, rec.Body.Len())
	}

	guarded := Handler(WithTypes(registry), WithGuard(func(*http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))
	if rec := serveRequest(guarded, http.MethodGet, "/admin/people/new"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestHandlerTypePathOverrides(t *testing.T) {
	registry, store := fixture(t)
	h := Handler(
		WithRoutePath("/cms"),
		WithTypes(registry),
		WithFields(store),
		WithTypePaths(map[string]string{"Person": "staff"}),
	)
	rec := serveRequest(h, http.MethodGet, "/cms/staff/new")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="person[full_name]"`) {
		t.Fatalf("expected override segment to resolve, got %d:\n%s", rec.Code, rec.Body.String())
	}
}

func TestHandlerNameParamAndFormOptions(t *testing.T) {
	registry, store := fixture(t)
	h := Handler(
		WithTypes(registry),
		WithFields(store),
		WithNameParam("scope"),
		WithFormOptions(
			form.WithTemplatesFS(fstest.MapFS{
				"custom/input.tmpl": {Data: []byte(`<li class="custom"{{ input|attrs }}></li>`)},
			}),
			form.WithPartial("forms.input", "custom/input.tmpl"),
		),
	)

	rec := serveRequest(h, http.MethodGet, "/admin/people/new?scope=author&name=ignored")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `class="custom"`) || !strings.Contains(body, `name="author[full_name]"`) {
		t.Fatalf("expected custom partial under the scope name, got:\n%s", body)
	}
}

func TestStatusErrorDefaults(t *testing.T) {
	var zero StatusError
	if zero.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("expected 500 for zero code, got %d", zero.StatusCode())
	}
	if zero.Error() != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("unexpected zero message %q", zero.Error())
	}

	wrapped := StatusError{Code: http.StatusNotFound, Err: ErrNotFound}
	if wrapped.Error() != ErrNotFound.Error() || !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("expected wrapped error to surface, got %v", wrapped)
	}
	var httpErr HTTPError = StatusError{Code: http.StatusTeapot}
	if httpErr.StatusCode() != http.StatusTeapot || httpErr.Error() != http.StatusText(http.StatusTeapot) {
		t.Fatalf("unexpected teapot error %d %q", httpErr.StatusCode(), httpErr.Error())
	}
}

func TestNewOptionsRestoresDefaults(t *testing.T) {
	opts := NewOptions(nil, WithRoutePath(""), WithNameParam(""), WithLogger(nil))
	defaults := DefaultOptions()
	if opts.RoutePath != defaults.RoutePath || opts.NameParam != defaults.NameParam || opts.Logger == nil {
		t.Fatalf("expected defaults restored, got %+v", opts)
	}
}
