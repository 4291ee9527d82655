//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

const defaultHTTPBase = "http://localhost:8080"

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient() *httpClient {
	base := os.Getenv("ACCOUNT_HTTP_URL")
	if base == "" {
		base = defaultHTTPBase
	}
	return &httpClient{
		baseURL: base,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *httpClient) do(t *testing.T, method, path, accessToken string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal failed: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read response failed: %v", err)
	}
	return resp, buf.Bytes()
}

func (c *httpClient) postJSON(t *testing.T, path string, body any) (*http.Response, []byte) {
	return c.do(t, http.MethodPost, path, "", body)
}

func (c *httpClient) postJSONWithAuth(t *testing.T, path, accessToken string, body any) (*http.Response, []byte) {
	return c.do(t, http.MethodPost, path, accessToken, body)
}

func waitForHTTP(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		req, _ := http.NewRequest(http.MethodPost, baseURL+"/auth/login", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("http service not ready at %s", baseURL)
}

func TestAccountE2E_HTTPFlow(t *testing.T) {
	httpBase := os.Getenv("ACCOUNT_HTTP_URL")
	if httpBase == "" {
		httpBase = defaultHTTPBase
	}

	if err := waitForHTTP(httpBase, 30*time.Second); err != nil {
		t.Fatalf("http not ready: %v", err)
	}

	client := newHTTPClient()

	state := struct {
		username    string
		email       string
		password    string
		newPassword string
		accessToken string
		recordID    uint64
	}{
		username:    fmt.Sprintf("e2e%d", time.Now().UnixNano()),
		email:       fmt.Sprintf("e2e+%d@example.com", time.Now().UnixNano()),
		password:    "StrongPass1!",
		newPassword: "NewStrongPass1!",
	}

	abort := false
	fail := func(t *testing.T, format string, args ...any) {
		abort = true
		t.Fatalf(format, args...)
	}

	step := func(name string, fn func(t *testing.T)) {
		t.Run(name, func(t *testing.T) {
			if abort {
				t.Skip("previous step failed")
			}
			fn(t)
		})
	}

	step("LoginBeforeRegister", func(t *testing.T) {
		resp, _ := client.postJSON(t, "/auth/login", map[string]string{
			"username": state.username,
			"password": state.password,
		})
		if resp.StatusCode != http.StatusUnauthorized {
			fail(t, "expected login before register to fail, got %d", resp.StatusCode)
		}
	})

	step("Register", func(t *testing.T) {
		resp, body := client.postJSON(t, "/auth/register", map[string]string{
			"username":   state.username,
			"email":      state.email,
			"password":   state.password,
			"first_name": "End",
			"last_name":  "ToEnd",
			"birth_date": "1990-05-01",
			"gender":     "other",
		})
		if resp.StatusCode != http.StatusCreated {
			fail(t, "register status: %d body: %s", resp.StatusCode, string(body))
		}

		var regRes struct {
			Profile struct {
				ID       uint64 `json:"id"`
				Username string `json:"username"`
			} `json:"profile"`
		}
		if err := json.Unmarshal(body, &regRes); err != nil {
			fail(t, "register unmarshal failed: %v", err)
		}
		if regRes.Profile.ID == 0 || regRes.Profile.Username != state.username {
			fail(t, "unexpected register profile: %s", string(body))
		}
	})

	step("RegisterDuplicateUsername", func(t *testing.T) {
		resp, _ := client.postJSON(t, "/auth/register", map[string]string{
			"username": state.username,
			"email":    "other-" + state.email,
			"password": state.password,
		})
		if resp.StatusCode != http.StatusConflict {
			fail(t, "expected duplicate username conflict, got %d", resp.StatusCode)
		}
	})

	step("RegisterDuplicateEmail", func(t *testing.T) {
		resp, _ := client.postJSON(t, "/auth/register", map[string]string{
			"username": "other" + state.username,
			"email":    state.email,
			"password": state.password,
		})
		if resp.StatusCode != http.StatusConflict {
			fail(t, "expected duplicate email conflict, got %d", resp.StatusCode)
		}
	})

	step("LoginWrongPassword", func(t *testing.T) {
		resp, _ := client.postJSON(t, "/auth/login", map[string]string{
			"username": state.username,
			"password": "wrong-password",
		})
		if resp.StatusCode != http.StatusUnauthorized {
			fail(t, "expected wrong password to fail, got %d", resp.StatusCode)
		}
	})

	step("Login", func(t *testing.T) {
		resp, body := client.postJSON(t, "/auth/login", map[string]string{
			"username": state.username,
			"password": state.password,
		})
		if resp.StatusCode != http.StatusOK {
			fail(t, "login status: %d body: %s", resp.StatusCode, string(body))
		}

		var loginRes struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int64  `json:"expires_in"`
		}
		if err := json.Unmarshal(body, &loginRes); err != nil {
			fail(t, "login unmarshal failed: %v", err)
		}
		if loginRes.AccessToken == "" || loginRes.ExpiresIn <= 0 {
			fail(t, "expected access token and expiry, got %s", string(body))
		}
		state.accessToken = loginRes.AccessToken
	})

	step("VerifyEmailInvalidToken", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodGet, "/auth/verify-email?token=not-a-real-token", "", nil)
		if resp.StatusCode != http.StatusBadRequest {
			fail(t, "expected invalid verification token to fail, got %d", resp.StatusCode)
		}
	})

	step("RequestPasswordChangeUnknownEmail", func(t *testing.T) {
		resp, _ := client.postJSON(t, "/auth/request-password-change", map[string]string{
			"email": "missing-" + state.email,
		})
		if resp.StatusCode != http.StatusOK {
			fail(t, "expected reset request for missing email to return 200, got %d", resp.StatusCode)
		}
	})

	step("ChangePasswordWrongOld", func(t *testing.T) {
		resp, _ := client.postJSONWithAuth(t, "/auth/change-password", state.accessToken, map[string]string{
			"old_password": "wrong-password",
			"new_password": state.newPassword,
		})
		if resp.StatusCode != http.StatusUnauthorized {
			fail(t, "expected wrong old password to fail, got %d", resp.StatusCode)
		}
	})

	step("ChangePassword", func(t *testing.T) {
		resp, body := client.postJSONWithAuth(t, "/auth/change-password", state.accessToken, map[string]string{
			"old_password": state.password,
			"new_password": state.newPassword,
		})
		if resp.StatusCode != http.StatusOK {
			fail(t, "change password status: %d body: %s", resp.StatusCode, string(body))
		}
	})

	step("LoginOldPasswordFails", func(t *testing.T) {
		resp, _ := client.postJSON(t, "/auth/login", map[string]string{
			"username": state.username,
			"password": state.password,
		})
		if resp.StatusCode != http.StatusUnauthorized {
			fail(t, "expected old password to fail, got %d", resp.StatusCode)
		}
	})

	step("LoginNewPassword", func(t *testing.T) {
		resp, body := client.postJSON(t, "/auth/login", map[string]string{
			"username": state.username,
			"password": state.newPassword,
		})
		if resp.StatusCode != http.StatusOK {
			fail(t, "login with new password status: %d body: %s", resp.StatusCode, string(body))
		}
		var loginRes struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal(body, &loginRes); err != nil {
			fail(t, "login unmarshal failed: %v", err)
		}
		state.accessToken = loginRes.AccessToken
	})

	step("AppendRecordUnauthorized", func(t *testing.T) {
		resp, _ := client.postJSON(t, "/posture/records", map[string]any{
			"posture_type":     "upright",
			"confidence_score": 0.9,
		})
		if resp.StatusCode != http.StatusUnauthorized {
			fail(t, "expected unauthenticated append to fail, got %d", resp.StatusCode)
		}
	})

	step("AppendRecord", func(t *testing.T) {
		resp, body := client.postJSONWithAuth(t, "/posture/records", state.accessToken, map[string]any{
			"posture_type":     "slouching",
			"confidence_score": 0.87,
			"session_duration": 300,
		})
		if resp.StatusCode != http.StatusCreated {
			fail(t, "append status: %d body: %s", resp.StatusCode, string(body))
		}

		var appendRes struct {
			Record struct {
				ID uint64 `json:"id"`
			} `json:"record"`
		}
		if err := json.Unmarshal(body, &appendRes); err != nil {
			fail(t, "append unmarshal failed: %v", err)
		}
		if appendRes.Record.ID == 0 {
			fail(t, "expected record id, got %s", string(body))
		}
		state.recordID = appendRes.Record.ID
	})

	step("History", func(t *testing.T) {
		resp, body := client.do(t, http.MethodGet, "/posture/records", state.accessToken, nil)
		if resp.StatusCode != http.StatusOK {
			fail(t, "history status: %d body: %s", resp.StatusCode, string(body))
		}

		var historyRes struct {
			Records []struct {
				ID          uint64 `json:"id"`
				PostureType string `json:"posture_type"`
			} `json:"records"`
		}
		if err := json.Unmarshal(body, &historyRes); err != nil {
			fail(t, "history unmarshal failed: %v", err)
		}
		if len(historyRes.Records) != 1 || historyRes.Records[0].ID != state.recordID {
			fail(t, "expected the appended record, got %s", string(body))
		}
	})

	step("DeleteUnknownRecord", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodDelete, "/posture/records/999999999", state.accessToken, nil)
		if resp.StatusCode != http.StatusNotFound {
			fail(t, "expected deleting an unknown record to 404, got %d", resp.StatusCode)
		}
	})

	step("DeleteRecord", func(t *testing.T) {
		resp, body := client.do(t, http.MethodDelete, fmt.Sprintf("/posture/records/%d", state.recordID), state.accessToken, nil)
		if resp.StatusCode != http.StatusOK {
			fail(t, "delete status: %d body: %s", resp.StatusCode, string(body))
		}
	})

	step("HistoryEmptyAfterDelete", func(t *testing.T) {
		resp, body := client.do(t, http.MethodGet, "/posture/records", state.accessToken, nil)
		if resp.StatusCode != http.StatusOK {
			fail(t, "history status: %d body: %s", resp.StatusCode, string(body))
		}
		var historyRes struct {
			Records []json.RawMessage `json:"records"`
		}
		if err := json.Unmarshal(body, &historyRes); err != nil {
			fail(t, "history unmarshal failed: %v", err)
		}
		if len(historyRes.Records) != 0 {
			fail(t, "expected empty history, got %s", string(body))
		}
	})

	step("AdminListForbidden", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodGet, "/admin/users", state.accessToken, nil)
		if resp.StatusCode != http.StatusForbidden {
			fail(t, "expected non-admin listing to be forbidden, got %d", resp.StatusCode)
		}
	})
}
