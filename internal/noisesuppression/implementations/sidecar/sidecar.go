// SPDX-License-Identifier: MIT

// Package sidecar delegates noise suppression to an HTTP noisereduce service
// running next to the denoiser.
//
// The request is POST {url}/denoise with float32 little-endian PCM in the
// body: the noise clip first, then the signal. The X-Noise-Samples header
// carries the clip length and the query string carries the sample rate and
// options. The response body is the denoised signal in the same encoding.
package sidecar

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"denoise/internal/log"
	"denoise/internal/noisesuppression"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 5 * time.Second

// NoiseSamplesHeader carries the number of noise-clip samples at the start
// of the request body.
const NoiseSamplesHeader = "X-Noise-Samples"

// Client calls the noisereduce sidecar.
type Client struct {
	url    string
	client *http.Client
}

var _ noisesuppression.NoiseSuppression = (*Client)(nil)

// New creates a client for the sidecar at baseURL. A zero timeout selects
// DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:    baseURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// Reduce sends the clip and signal to the sidecar and returns its output.
func (c *Client) Reduce(
	ctx context.Context,
	samples []float64,
	sampleRate int,
	noiseClip []float64,
	opts noisesuppression.Options,
) ([]float64, error) {
	body := make([]byte, 0, (len(noiseClip)+len(samples))*4)
	body = appendFloat32s(body, noiseClip)
	body = appendFloat32s(body, samples)

	q := url.Values{}
	q.Set("sr", strconv.Itoa(sampleRate))
	q.Set("stationary", strconv.FormatBool(opts.Stationary))
	q.Set("prop_decrease", strconv.FormatFloat(opts.PropDecrease, 'f', -1, 64))
	q.Set("n_fft", strconv.Itoa(opts.FFTSize))
	q.Set("hop_length", strconv.Itoa(opts.HopSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/denoise?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: sidecar request: %v", noisesuppression.ErrDelegateFailure, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(NoiseSamplesHeader, strconv.Itoa(len(noiseClip)))

	log.Debugf("sidecar: POST %s (%d samples, %d noise)", c.url, len(samples), len(noiseClip))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sidecar http: %w", noisesuppression.ErrDelegateFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: sidecar status %d: %s", noisesuppression.ErrDelegateFailure, resp.StatusCode, string(msg))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: sidecar read: %w", noisesuppression.ErrDelegateFailure, err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: sidecar response not aligned to float32", noisesuppression.ErrDelegateFailure)
	}

	out := decodeFloat32s(raw)
	if len(out) != len(samples) {
		return nil, fmt.Errorf("%w: sidecar returned %d samples, sent %d",
			noisesuppression.ErrDelegateFailure, len(out), len(samples))
	}
	return out, nil
}

func appendFloat32s(dst []byte, samples []float64) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(s)))
	}
	return dst
}

func decodeFloat32s(raw []byte) []float64 {
	out := make([]float64, len(raw)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
	}
	return out
}
