package attend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// send decorates req with the bearer credential when one is present, executes
// it, and intercepts authorization failures. A 401 on a request that carried
// a credential clears it and fires the auth-expired hook before the error is
// returned; a 401 on an anonymous request (login) is left to the caller.
// Network-level failures come back as TransportError and never touch the
// credential.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	decorated := false
	if token := c.Credential(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		decorated = true
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: req.Method + " " + req.URL.Path, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && decorated {
		resp.Body.Close()
		c.expireCredential()
		return nil, ErrAuthorizationExpired
	}

	return resp, nil
}

// decodeStatusError turns a non-2xx response into a ValidationError carrying
// the backend's own detail message. The body follows the backend's error
// shape: {"detail": "..."}.
func decodeStatusError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ValidationError{Status: resp.StatusCode}
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Detail == "" {
		return &ValidationError{Status: resp.StatusCode, Detail: string(bytes.TrimSpace(body))}
	}
	return &ValidationError{Status: resp.StatusCode, Detail: payload.Detail}
}

// doGetJSON performs a GET request and unmarshals the JSON response into the
// result type. The endpoint is the path after the backend origin.
func doGetJSON[T any](c *Client, endpoint string) (*T, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.resolveURL(endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeStatusError(resp)
	}

	var result T
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// doDelete performs a DELETE request and discards the response body.
func doDelete(c *Client, endpoint string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, c.resolveURL(endpoint), nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeStatusError(resp)
	}
	return nil
}

// filePart is one file field of a multipart request.
type filePart struct {
	field    string
	filename string
	data     []byte
}

// doMultipart performs a multipart/form-data request with the given text
// fields and file parts and discards the response body on success.
func doMultipart(c *Client, method, endpoint string, fields map[string]string, files []filePart) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("could not write form field %s: %w", name, err)
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		if err != nil {
			return fmt.Errorf("could not create form file: %w", err)
		}
		if _, err := part.Write(f.data); err != nil {
			return fmt.Errorf("could not write file data: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("could not close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.resolveURL(endpoint), &body)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return decodeStatusError(resp)
	}
	return nil
}
