package fuzz

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func serve(t *testing.T, router http.Handler, cookie *http.Cookie, method, target, contentType string, body []byte) int {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code >= http.StatusInternalServerError {
		t.Fatalf("%s %s returned %d: %s", method, target, w.Code, w.Body.String())
	}
	return w.Code
}

// FuzzHTTPRecordPick fuzzes the pick endpoint. No input may produce a 5xx or
// leave the ledger out of step with the pool.
func FuzzHTTPRecordPick(f *testing.F) {
	f.Add(`{"player_id":"1","team_id":"team_1","price":40}`)
	f.Add(`{"player_id":"4","team_id":"team_3","price":0}`)
	f.Add(`{"player_id":"invalid","team_id":"team_9","price":-5}`)
	f.Add(`{"player_id":"1","team_id":"team_1","price":1e309}`)
	f.Add(`{"price":"12"}`)

	f.Fuzz(func(t *testing.T, data string) {
		router, cookie, svc := newRouter(t)
		serve(t, router, cookie, http.MethodPost, "/api/draft/pick", "application/json", []byte(data))
		serve(t, router, cookie, http.MethodPost, "/api/draft/pick", "application/json", []byte(data))
		checkLedger(t, svc)
	})
}

// FuzzHTTPSetKeepers fuzzes keeper replacement, which relinks and revalues.
func FuzzHTTPSetKeepers(f *testing.F) {
	f.Add("team_1", `{"keepers":[{"player_name":"Aaron Judge","salary":45}]}`)
	f.Add("team_2", `{"keepers":[{"player_name":"aaron judge","salary":5},{"player_name":"Judge Aaron","salary":6}]}`)
	f.Add("team_3", `{"keepers":[{"player_name":"","salary":-1}]}`)
	f.Add("nope", `{"keepers":null}`)

	f.Fuzz(func(t *testing.T, teamID, data string) {
		router, cookie, svc := newRouter(t)
		serve(t, router, cookie, http.MethodPost, "/api/keepers/teams/"+url.PathEscape(teamID), "application/json", []byte(data))
		checkLedger(t, svc)
	})
}

// FuzzHTTPImportKeepersCSV fuzzes the CSV keeper import.
func FuzzHTTPImportKeepersCSV(f *testing.F) {
	f.Add("team_name,player_name,salary\nTeam 1,Aaron Judge,40\n")
	f.Add("team_name,player_name,salary\nTeam 2,Will Smith,abc\n")
	f.Add("salary\n1\n")
	f.Add("\"unterminated")

	f.Fuzz(func(t *testing.T, data string) {
		router, cookie, svc := newRouter(t)
		serve(t, router, cookie, http.MethodPost, "/api/keepers/import", "text/csv", []byte(data))
		checkLedger(t, svc)
	})
}

// FuzzHTTPResultsQuery fuzzes the query string of the valuation listing.
func FuzzHTTPResultsQuery(f *testing.F) {
	f.Add("position=OF&sort_by=sgp&limit=3")
	f.Add("hitters_only=true&pitchers_only=true")
	f.Add("min_value=NaN&limit=-1")
	f.Add("search=%00&sort_by=zzz")

	f.Fuzz(func(t *testing.T, query string) {
		router, _, _ := newRouter(t)
		serve(t, router, nil, http.MethodGet, "/api/valuations/results?"+url.PathEscape(query), "", nil)
		serve(t, router, nil, http.MethodGet, "/api/draft/classify?"+url.PathEscape(query), "", nil)
	})
}
