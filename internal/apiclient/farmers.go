package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/freshxpress/dashboard/internal/models"
)

const maxErrorBody = 64 << 10

// ListFarmers fetches the whole farmer collection in one request.
func (c *Client) ListFarmers(ctx context.Context) ([]models.FarmerSummary, error) {
	resp, err := c.AuthFetch(ctx, http.MethodGet, "/api/farmers", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, readStatusError(resp)
	}
	var farmers []models.FarmerSummary
	if err := json.NewDecoder(resp.Body).Decode(&farmers); err != nil {
		return nil, fmt.Errorf("decode farmers: %w", err)
	}
	return farmers, nil
}

// GetFarmer fetches one record. A 404 or a JSON null body yields (nil, nil).
func (c *Client) GetFarmer(ctx context.Context, id string) (*models.Farmer, error) {
	resp, err := c.AuthFetch(ctx, http.MethodGet, farmerPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode/100 != 2 {
		return nil, readStatusError(resp)
	}
	var farmer *models.Farmer
	if err := json.NewDecoder(resp.Body).Decode(&farmer); err != nil {
		return nil, fmt.Errorf("decode farmer %s: %w", id, err)
	}
	return farmer, nil
}

// SetVerification writes the verification flag of one farmer.
func (c *Client) SetVerification(ctx context.Context, id string, verified bool) error {
	body, err := json.Marshal(models.VerificationUpdate{IsVerify: verified})
	if err != nil {
		return err
	}
	header := http.Header{"Content-Type": []string{"application/json"}}
	resp, err := c.AuthFetch(ctx, http.MethodPut, farmerPath(id), bytes.NewReader(body), header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return readStatusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Login exchanges credentials for a token. It does not need a token store.
// A rejected login returns *StatusError carrying the backend message, or
// "Login failed" when the backend sent none.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var out models.LoginResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&out)
	if resp.StatusCode/100 != 2 {
		msg := out.Message
		if msg == "" {
			msg = "Login failed"
		}
		return "", &StatusError{Code: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode login response: %w", decodeErr)
	}
	if out.Token == "" {
		return "", &StatusError{Code: resp.StatusCode, Message: "Login failed"}
	}
	return out.Token, nil
}

func farmerPath(id string) string {
	return "/api/farmers/" + url.PathEscape(id)
}

func readStatusError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}
