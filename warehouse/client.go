/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sanger-pathogens/monocle-sub000/types"
)

const (
	samplesEndpoint = "/samples"
	requestTimeout  = 30 * time.Second
	maxRetries      = 3
)

// Client is an HTTP Source talking JSON to the sequencing warehouse API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a Client for the warehouse API at the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type samplesRequest struct {
	SangerSampleIDs []string `json:"sanger_sample_ids"`
}

type laneJSON struct {
	ID                 string `json:"id"`
	RunStatus          string `json:"run_status"`
	QCStarted          int    `json:"qc_started"`
	QCSuccess          int    `json:"qc_success"`
	QCLib              int    `json:"qc_lib"`
	QCSeq              int    `json:"qc_seq"`
	QCCompleteDatetime string `json:"qc_complete_datetime"`
	QCStatusText       string `json:"qc_status_text"`
}

type sampleStatusJSON struct {
	PublicName       string     `json:"public_name"`
	CreationDatetime string     `json:"creation_datetime"`
	Lanes            []laneJSON `json:"lanes"`
}

// GetMultipleSamples implements Source. Transient network and server failures
// are retried with exponential backoff; a 404 from the warehouse becomes
// ErrNotFound without retrying.
func (c *Client) GetMultipleSamples(ctx context.Context, sampleIDs []string) (map[string]types.SampleStatus, error) {
	body, err := json.Marshal(samplesRequest{SangerSampleIDs: sampleIDs})
	if err != nil {
		return nil, err
	}

	var statuses map[string]sampleStatusJSON

	operation := func() error {
		statuses, err = c.postSamples(ctx, body)

		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)

	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}

	result := make(map[string]types.SampleStatus, len(statuses))

	for sampleID, status := range statuses {
		result[sampleID] = statusFromJSON(sampleID, status)
	}

	return result, nil
}

func (c *Client) postSamples(ctx context.Context, body []byte) (map[string]sampleStatusJSON, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+samplesEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(ErrNotFound)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %s", ErrServer, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrServer, resp.Status))
	}

	var statuses map[string]sampleStatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		return nil, backoff.Permanent(err)
	}

	return statuses, nil
}

func statusFromJSON(sampleID string, status sampleStatusJSON) types.SampleStatus {
	lanes := make([]types.Lane, len(status.Lanes))

	for i, lane := range status.Lanes {
		lanes[i] = types.Lane{
			ID:                 lane.ID,
			RunStatus:          lane.RunStatus,
			QCStarted:          lane.QCStarted,
			QCSuccess:          lane.QCSuccess,
			QCLib:              lane.QCLib,
			QCSeq:              lane.QCSeq,
			QCCompleteDatetime: lane.QCCompleteDatetime,
			QCStatusText:       lane.QCStatusText,
		}
	}

	return types.SampleStatus{
		SampleID:         sampleID,
		PublicName:       status.PublicName,
		CreationDatetime: status.CreationDatetime,
		Lanes:            lanes,
	}
}
