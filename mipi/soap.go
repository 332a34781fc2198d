package mipi

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
)

func doCall[T any](ctx context.Context, client *http.Client, desc Description, payload any) (*T, error) {
	envelope, err := xml.Marshal(requestEnvelope{
		Soap: soapEnvelopeNs,
		Xsi:  xsiNs,
		Body: requestBody{Content: payload},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqBody := append([]byte(xml.Header), envelope...)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, desc.Address, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", fmt.Sprintf("%q", desc.SoapAction))

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call service: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resEnvelope responseEnvelope[T]
	decodeErr := xml.Unmarshal(body, &resEnvelope)

	// Faults usually come back with status 500.
	if decodeErr == nil && resEnvelope.Body.Fault != nil {
		return nil, &FaultError{
			Code:    resEnvelope.Body.Fault.Code,
			Message: resEnvelope.Body.Fault.String,
		}
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, decodeErr)
	}

	if resEnvelope.Body.Content == nil {
		return nil, fmt.Errorf("%w: empty soap body", ErrMalformedResponse)
	}

	return resEnvelope.Body.Content, nil
}

func IsFault(err error) bool {
	var fault *FaultError
	return errors.As(err, &fault)
}
