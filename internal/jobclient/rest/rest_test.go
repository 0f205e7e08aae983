package rest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/activator/internal/jobclient"
	"github.com/slok/activator/internal/jobclient/rest"
	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*rest.Client, string) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := rest.NewClient(rest.ClientConfig{
		HTTPClient: srv.Client(),
		Headers:    map[string]string{"X-Api-Key": "secret"},
		Logger:     log.Noop,
	})
	require.NoError(t, err)

	return c, srv.URL
}

func TestClientInit(t *testing.T) {
	tests := map[string]struct {
		method    string
		handler   http.HandlerFunc
		expResult *jobclient.ActionResult
		expErr    string
	}{
		"A successful init should return success.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success":true}`))
			},
			expResult: &jobclient.ActionResult{Success: true},
		},

		"A rejected init should return the message.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success":false,"message":"account limit reached"}`))
			},
			expResult: &jobclient.ActionResult{Success: false, Message: "account limit reached"},
		},

		"A missing success field on init should be a rejection.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			},
			expResult: &jobclient.ActionResult{Success: false},
		},

		"A non 2xx status should fail with the server message.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"code":"internal","message":"database is down"}`))
			},
			expErr: "unexpected status code 500: database is down",
		},

		"A non 2xx status without body should fail.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			expErr: "unexpected status code 502",
		},

		"A malformed body should fail.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			expErr: "malformed response",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var gotMethod, gotKey string
			c, url := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotKey = r.Header.Get("X-Api-Key")
				test.handler(w, r)
			})

			res, err := c.Init(context.Background(), model.Action{URL: url + "/init"})

			assert.Equal(http.MethodPost, gotMethod)
			assert.Equal("secret", gotKey)
			if test.expErr != "" {
				if assert.Error(err) {
					assert.Contains(err.Error(), test.expErr)
				}
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, res)
			}
		})
	}
}

func TestClientCheck(t *testing.T) {
	tests := map[string]struct {
		body      string
		expResult *jobclient.CheckResult
	}{
		"A pending status without success should not be a rejection.": {
			body:      `{"status":"pending"}`,
			expResult: &jobclient.CheckResult{Status: "pending", Success: true},
		},

		"A completed status should be completed.": {
			body:      `{"status":"completed","success":true}`,
			expResult: &jobclient.CheckResult{Status: "completed", Success: true},
		},

		"An explicit false success should be a rejection.": {
			body:      `{"status":"failed","success":false,"message":"provisioning failed"}`,
			expResult: &jobclient.CheckResult{Status: "failed", Success: false, Message: "provisioning failed"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			c, url := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(test.body))
			})

			res, err := c.Check(context.Background(), model.Action{URL: url + "/check", Method: http.MethodPost})
			if assert.NoError(err) {
				assert.Equal(test.expResult, res)
				assert.Equal(test.expResult.Status == "completed", res.Completed())
			}
		})
	}
}

func TestClientCustomMethod(t *testing.T) {
	var gotMethod string
	c, url := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	_, err := c.Finish(context.Background(), model.Action{URL: url + "/finish", Method: http.MethodDelete})
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestClientTransportError(t *testing.T) {
	c, err := rest.NewClient(rest.ClientConfig{})
	require.NoError(t, err)

	_, err = c.Clean(context.Background(), model.Action{URL: "http://127.0.0.1:1/clean"})
	assert.Error(t, err)
}

func TestParseHeaders(t *testing.T) {
	tests := map[string]struct {
		specs      []string
		expHeaders map[string]string
		expErr     bool
	}{
		"Valid headers should be parsed and canonicalized.": {
			specs:      []string{"x-api-key: secret", "Authorization:Bearer abc"},
			expHeaders: map[string]string{"X-Api-Key": "secret", "Authorization": "Bearer abc"},
		},
		"A header without separator should fail.": {
			specs:  []string{"X-Api-Key"},
			expErr: true,
		},
		"A header without key should fail.": {
			specs:  []string{": value"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := rest.ParseHeaders(test.specs)
			if test.expErr {
				assert.Error(t, err)
			} else if assert.NoError(t, err) {
				assert.Equal(t, test.expHeaders, got)
			}
		})
	}
}
