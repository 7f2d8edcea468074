package fuseki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
	rdfns "github.com/mohamedmoudjahed/semantic-web/vocabulary/rdf"
)

func testClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL, "tolkien", WithHTTPClient(srv.Client()))
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/$/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, testClient(srv).Ping(context.Background()))
}

func TestPingUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := testClient(srv).Ping(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestQueryIncludesPrologue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tolkien/sparql", r.URL.Path)
		require.NoError(t, r.ParseForm())
		q := r.PostForm.Get("query")
		assert.Contains(t, q, "PREFIX tolkien: <"+arda.ResourceNamespace+">")
		assert.Contains(t, q, "SELECT ?s")
		fmt.Fprint(w, `{"results":{"bindings":[
			{"s":{"type":"uri","value":"http://tolkien-kg.org/resource/Frodo_Baggins"}},
			{"s":{"type":"literal","value":"Frodon Sacquet","xml:lang":"fr"}}
		]}}`)
	}))
	defer srv.Close()

	rows, err := testClient(srv).Query(context.Background(), "SELECT ?s WHERE { ?s ?p ?o }")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "uri", rows[0]["s"].Type)
	assert.Equal(t, "http://tolkien-kg.org/resource/Frodo_Baggins", rows[0]["s"].Value)
	assert.Equal(t, "fr", rows[1]["s"].Lang)
}

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"boolean":true}`)
	}))
	defer srv.Close()

	ok, err := testClient(srv).Ask(context.Background(), "ASK { ?s ?p ?o }")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tolkien/update", r.URL.Path)
		require.NoError(t, r.ParseForm())
		u := r.PostForm.Get("update")
		assert.Contains(t, u, "PREFIX schema:")
		assert.Contains(t, u, "INSERT DATA")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := testClient(srv).Update(context.Background(), "INSERT DATA { <a> <b> <c> }")
	assert.NoError(t, err)
}

func TestLoad(t *testing.T) {
	g := graph.New()
	g.Add(graph.Triple{
		Subject:   arda.ResourceNamespace + "Frodo_Baggins",
		Predicate: rdfns.Label,
		Object:    graph.LangLiteral("Frodo Baggins", "en"),
	})

	t.Run("append", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/tolkien/data", r.URL.Path)
			assert.Equal(t, "text/turtle", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), "tolkien:Frodo_Baggins")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		assert.NoError(t, testClient(srv).Load(context.Background(), g, false))
	})

	t.Run("replace", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		assert.NoError(t, testClient(srv).Load(context.Background(), g, true))
	})
}

func TestLoadReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "parse error at line 3", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := testClient(srv).Load(context.Background(), graph.New(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")
}

func TestCountTriples(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.PostForm.Get("query"), "COUNT(*)")
		fmt.Fprint(w, `{"results":{"bindings":[{"count":{"type":"literal","value":"1342"}}]}}`)
	}))
	defer srv.Close()

	n, err := testClient(srv).CountTriples(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1342, n)
}

func TestQueryUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL, "tolkien").Query(context.Background(), "SELECT * WHERE { ?s ?p ?o }")
	assert.True(t, errors.Is(err, ErrUnavailable))
}
