package router

import (
	"encoding/json"
	"go/ast"
	"go/parser"
	"go/token"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/shopcart/backend/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type swaggerOperation struct {
	Summary    string `json:"summary"`
	Parameters []struct {
		Name string `json:"name"`
		In   string `json:"in"`
	} `json:"parameters"`
	Responses map[string]json.RawMessage `json:"responses"`
}

type swaggerDoc struct {
	BasePath string                                 `json:"basePath"`
	Paths    map[string]map[string]swaggerOperation `json:"paths"`
}

func loadSwaggerDoc(t *testing.T) swaggerDoc {
	t.Helper()
	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))
	return doc
}

// annotatedOperation is what a handler's godoc block declares
type annotatedOperation struct {
	summary string
	params  []string
	codes   []string
}

var routerAnnotation = regexp.MustCompile(`^(\S+)\s+\[(\w+)\]$`)

func parseHandlerAnnotations(t *testing.T) map[string]annotatedOperation {
	t.Helper()
	dir := filepath.Join("..", "handler")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	ops := make(map[string]annotatedOperation)
	fset := token.NewFileSet()
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		require.NoError(t, err)

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Doc == nil {
				continue
			}
			var op annotatedOperation
			var key string
			for _, c := range fn.Doc.List {
				attr, rest, _ := strings.Cut(strings.TrimSpace(strings.TrimPrefix(c.Text, "//")), " ")
				rest = strings.TrimSpace(rest)
				switch attr {
				case "@Summary":
					op.summary = rest
				case "@Param":
					fields := strings.Fields(rest)
					op.params = append(op.params, fields[1]+":"+fields[0])
				case "@Success", "@Failure":
					op.codes = append(op.codes, strings.Fields(rest)[0])
				case "@Router":
					m := routerAnnotation.FindStringSubmatch(rest)
					require.NotNil(t, m, "malformed @Router on %s", fn.Name.Name)
					key = strings.ToUpper(m[2]) + " " + m[1]
				}
			}
			if key != "" {
				ops[key] = op
			}
		}
	}
	return ops
}

func documentedOperations(doc swaggerDoc) map[string]swaggerOperation {
	ops := make(map[string]swaggerOperation)
	for path, methods := range doc.Paths {
		for method, op := range methods {
			ops[strings.ToUpper(method)+" "+path] = op
		}
	}
	return ops
}

var ginParam = regexp.MustCompile(`:(\w+)`)

func TestSwaggerDoc_CoversMountedRoutes(t *testing.T) {
	engine := setupAPI(Guards{Authenticate: denyAll(http.StatusUnauthorized), ManageCatalog: denyAll(http.StatusForbidden)})
	doc := loadSwaggerDoc(t)
	require.Equal(t, NewRouter(engine).BasePath(), doc.BasePath)

	documented := documentedOperations(doc)
	mounted := make(map[string]bool)
	for _, route := range engine.Routes() {
		path := ginParam.ReplaceAllString(strings.TrimPrefix(route.Path, doc.BasePath), "{$1}")
		key := route.Method + " " + path
		mounted[key] = true
		assert.Contains(t, documented, key, "mounted route is missing from the API docs")
	}
	for key := range documented {
		assert.True(t, mounted[key], "documented operation %s is not mounted", key)
	}
}

func TestSwaggerDoc_MatchesHandlerAnnotations(t *testing.T) {
	annotated := parseHandlerAnnotations(t)
	documented := documentedOperations(loadSwaggerDoc(t))
	require.NotEmpty(t, annotated)

	assert.ElementsMatch(t, keys(annotated), keys(documented), "regenerate docs with go generate ./cmd/server")

	for key, want := range annotated {
		got, ok := documented[key]
		if !ok {
			continue
		}
		t.Run(key, func(t *testing.T) {
			assert.Equal(t, want.summary, got.Summary)

			params := make([]string, 0, len(got.Parameters))
			for _, p := range got.Parameters {
				params = append(params, p.In+":"+p.Name)
			}
			assert.ElementsMatch(t, want.params, params)
			assert.ElementsMatch(t, want.codes, keys(got.Responses))
		})
	}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
