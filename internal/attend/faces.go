package attend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// ListFaces fetches the current set of reference image locators for a user.
// The backend is the only party that assigns slot indices; the returned order
// is authoritative.
func (c *Client) ListFaces(userID int) ([]string, error) {
	result, err := doGetJSON[faceListResponse](c, "users/"+strconv.Itoa(userID)+"/faces")
	if err != nil {
		return nil, err
	}
	return result.Faces, nil
}

// AddFace uploads one new reference image for a user. The backend assigns the
// next free slot index.
func (c *Client) AddFace(userID int, image []byte) error {
	parts := []filePart{{field: "face", filename: "face.jpg", data: image}}
	return doMultipart(c, http.MethodPost, "users/"+strconv.Itoa(userID)+"/face", nil, parts)
}

// ReplaceFace swaps the image in an occupied slot for new content. The slot
// index stays the same; only the bytes behind the locator change.
func (c *Client) ReplaceFace(userID, slot int, image []byte) error {
	parts := []filePart{{field: "face", filename: "face.jpg", data: image}}
	endpoint := fmt.Sprintf("users/%d/face/%d", userID, slot)
	return doMultipart(c, http.MethodPut, endpoint, nil, parts)
}

// DeleteFace removes the reference image at the given slot.
func (c *Client) DeleteFace(userID, slot int) error {
	return doDelete(c, fmt.Sprintf("users/%d/face/%d", userID, slot))
}

// FaceImage streams the raw image at the given slot. The caller must close
// the returned reader.
func (c *Client) FaceImage(userID, slot int) (io.ReadCloser, string, error) {
	endpoint := fmt.Sprintf("users/%d/face/%d", userID, slot)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.resolveURL(endpoint), nil)
	if err != nil {
		return nil, "", fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, "", err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", decodeStatusError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
