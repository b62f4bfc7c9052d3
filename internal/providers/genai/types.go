package genai

import (
	"fmt"
	"net/http"
	"strings"
)

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string       `json:"prompt"`
	Image  *inlineImage `json:"image,omitempty"`
}

type inlineImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MIMEType           string `json:"mimeType"`
}

type predictParameters struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	SampleCount int    `json:"sampleCount,omitempty"`
}

// Operation mirrors a google.longrunning.Operation for video generation.
type Operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *Status            `json:"error,omitempty"`
	Response *operationResponse `json:"response,omitempty"`
}

// Status is the error payload of a failed operation.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

type operationResponse struct {
	GenerateVideoResponse *generateVideoResponse `json:"generateVideoResponse,omitempty"`
}

type generateVideoResponse struct {
	GeneratedSamples        []generatedSample `json:"generatedSamples"`
	RAIMediaFilteredCount   int               `json:"raiMediaFilteredCount,omitempty"`
	RAIMediaFilteredReasons []string          `json:"raiMediaFilteredReasons,omitempty"`
}

type generatedSample struct {
	Video struct {
		URI string `json:"uri"`
	} `json:"video"`
}

// VideoURI returns the first sample's download URI, or "" when the operation
// finished without one.
func (o *Operation) VideoURI() string {
	if o == nil || o.Response == nil || o.Response.GenerateVideoResponse == nil {
		return ""
	}
	for _, s := range o.Response.GenerateVideoResponse.GeneratedSamples {
		if uri := strings.TrimSpace(s.Video.URI); uri != "" {
			return uri
		}
	}
	return ""
}

// FilteredReasons lists the safety filter reasons reported for dropped samples.
func (o *Operation) FilteredReasons() []string {
	if o == nil || o.Response == nil || o.Response.GenerateVideoResponse == nil {
		return nil
	}
	return o.Response.GenerateVideoResponse.RAIMediaFilteredReasons
}

// Err converts a failed operation into an *APIError.
func (o *Operation) Err() error {
	if o == nil || o.Error == nil {
		return nil
	}
	return &APIError{Code: o.Error.Code, Status: o.Error.Status, Message: o.Error.Message}
}

type errorEnvelope struct {
	Error Status `json:"error"`
}

// APIError is a structured remote failure. HTTPStatus is zero when the error
// was reported inside an operation rather than by the transport.
type APIError struct {
	HTTPStatus int
	Code       int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	code := e.HTTPStatus
	if code == 0 {
		code = e.Code
	}
	if e.Status != "" {
		return fmt.Sprintf("genai status %d %s: %s", code, e.Status, e.Message)
	}
	return fmt.Sprintf("genai status %d: %s", code, e.Message)
}

// NotFound reports whether the remote service answered NOT_FOUND.
func (e *APIError) NotFound() bool {
	return e.Status == "NOT_FOUND" || e.Code == http.StatusNotFound || e.HTTPStatus == http.StatusNotFound
}

// DownloadError is returned when a result file could not be fetched.
type DownloadError struct {
	StatusCode int
	Status     string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download file status %d: %s", e.StatusCode, e.Status)
}
