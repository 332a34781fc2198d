package mipi

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const testWsdl = `<?xml version="1.0" encoding="utf-8"?>
<wsdl:definitions xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
    xmlns:soap12="http://schemas.xmlsoap.org/wsdl/soap12/"
    xmlns:tns="http://www.NationalGrid.com/MIPI/"
    xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/"
    targetNamespace="http://www.NationalGrid.com/MIPI/">
  <wsdl:binding name="PublicWebServiceSoap12" type="tns:PublicWebServiceSoap">
    <soap12:binding transport="http://schemas.xmlsoap.org/soap/http" />
    <wsdl:operation name="GetPublicationDataWM">
      <soap12:operation soapAction="soap12-action" style="document" />
    </wsdl:operation>
  </wsdl:binding>
  <wsdl:binding name="PublicWebServiceSoap" type="tns:PublicWebServiceSoap">
    <soap:binding transport="http://schemas.xmlsoap.org/soap/http" />
    <wsdl:operation name="GetPublicationDataWM">
      <soap:operation soapAction="http://www.NationalGrid.com/MIPI/GetPublicationDataWM" style="document" />
    </wsdl:operation>
  </wsdl:binding>
  <wsdl:service name="PublicWebService">
    <wsdl:port name="PublicWebServiceSoap12" binding="tns:PublicWebServiceSoap12">
      <soap12:address location="{{address}}/soap12" />
    </wsdl:port>
    <wsdl:port name="PublicWebServiceSoap" binding="tns:PublicWebServiceSoap">
      <soap:address location="{{address}}/publicwebservice.asmx" />
    </wsdl:port>
  </wsdl:service>
</wsdl:definitions>`

const envelopeHead = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    xmlns:xsd="http://www.w3.org/2001/XMLSchema"><soap:Body>`

const envelopeTail = `</soap:Body></soap:Envelope>`

type capturedRequest struct {
	SoapAction string
	Namespace  string
	Request    publicationRequest
}

type capturedEnvelope struct {
	Body struct {
		Call struct {
			XMLName xml.Name
			Req     publicationRequest `xml:"reqObject"`
		} `xml:",any"`
	} `xml:"Body"`
}

type stubService struct {
	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	response string
}

func newStubService(t *testing.T) *stubService {
	t.Helper()
	s := &stubService{t: t, status: http.StatusOK, response: noDataResponse()}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

func (s *stubService) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = io.WriteString(w, strings.ReplaceAll(testWsdl, "{{address}}", s.server.URL))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var env capturedEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, capturedRequest{
		SoapAction: r.Header.Get("SOAPAction"),
		Namespace:  env.Body.Call.XMLName.Space,
		Request:    env.Body.Call.Req,
	})
	status, response := s.status, s.response
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func (s *stubService) respond(status int, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.response = response
}

func (s *stubService) captured() []capturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedRequest(nil), s.requests...)
}

func (s *stubService) client(t *testing.T, logger *slog.Logger) *Mipi {
	t.Helper()
	m, err := New(context.Background(), logger, s.server.URL+"/publicwebservice.asmx?WSDL", nil)
	require.NoError(t, err)
	return m
}

func publicationResponse(reportName string, values ...string) string {
	var b strings.Builder
	b.WriteString(envelopeHead)
	b.WriteString(`<GetPublicationDataWMResponse xmlns="http://www.NationalGrid.com/MIPI/"><GetPublicationDataWMResult>`)
	b.WriteString(`<CLSMIPIPublicationObjectBE>`)
	fmt.Fprintf(&b, `<PublicationObjectName>%s</PublicationObjectName><PublicationObjectData>`, reportName)
	for i, v := range values {
		fmt.Fprintf(&b, `<CLSPublicationObjectDataBE>
			<ApplicableAt>2020-01-%02dT11:30:00</ApplicableAt>
			<ApplicableFor>2020-01-%02dT00:00:00</ApplicableFor>
			<Value>%s</Value>
			<GeneratedTimeStamp>2020-01-%02dT11:32:10</GeneratedTimeStamp>
			<QualityIndicator xsi:nil="true" />
			<Substituted>N</Substituted>
			<CreatedDate>2020-01-%02dT11:32:10</CreatedDate>
		</CLSPublicationObjectDataBE>`, i+2, i+1, v, i+2, i+2)
	}
	b.WriteString(`</PublicationObjectData></CLSMIPIPublicationObjectBE>`)
	b.WriteString(`</GetPublicationDataWMResult></GetPublicationDataWMResponse>`)
	b.WriteString(envelopeTail)
	return b.String()
}

func noDataResponse() string {
	return envelopeHead +
		`<GetPublicationDataWMResponse xmlns="http://www.NationalGrid.com/MIPI/" />` +
		envelopeTail
}

func faultResponse(message string) string {
	return envelopeHead +
		`<soap:Fault><faultcode>soap:Server</faultcode><faultstring>` + message + `</faultstring></soap:Fault>` +
		envelopeTail
}

// recordingHandler keeps every log record, attributes added with With are dropped.
type recordingHandler struct {
	mu      *sync.Mutex
	records *[]slog.Record
}

func newRecordingLogger() (*slog.Logger, *recordingHandler) {
	h := &recordingHandler{mu: &sync.Mutex{}, records: &[]slog.Record{}}
	return slog.New(h), h
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func (h *recordingHandler) atLevel(level slog.Level) []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []slog.Record
	for _, r := range *h.records {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}
