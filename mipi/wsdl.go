package mipi

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	wsdlNs     = "http://schemas.xmlsoap.org/wsdl/"
	wsdlSoapNs = "http://schemas.xmlsoap.org/wsdl/soap/"
)

// Description is what the client needs to know about one service operation.
type Description struct {
	Namespace  string
	Address    string
	SoapAction string
}

type wsdlDefinitions struct {
	XMLName         xml.Name      `xml:"http://schemas.xmlsoap.org/wsdl/ definitions"`
	TargetNamespace string        `xml:"targetNamespace,attr"`
	Bindings        []wsdlBinding `xml:"http://schemas.xmlsoap.org/wsdl/ binding"`
	Services        []wsdlService `xml:"http://schemas.xmlsoap.org/wsdl/ service"`
}

type wsdlBinding struct {
	Name       string                 `xml:"name,attr"`
	Soap       *wsdlSoapBinding       `xml:"http://schemas.xmlsoap.org/wsdl/soap/ binding"`
	Operations []wsdlBindingOperation `xml:"http://schemas.xmlsoap.org/wsdl/ operation"`
}

type wsdlSoapBinding struct {
	Transport string `xml:"transport,attr"`
}

type wsdlBindingOperation struct {
	Name string             `xml:"name,attr"`
	Soap *wsdlSoapOperation `xml:"http://schemas.xmlsoap.org/wsdl/soap/ operation"`
}

type wsdlSoapOperation struct {
	SoapAction string `xml:"soapAction,attr"`
}

type wsdlService struct {
	Name  string     `xml:"name,attr"`
	Ports []wsdlPort `xml:"http://schemas.xmlsoap.org/wsdl/ port"`
}

type wsdlPort struct {
	Name    string       `xml:"name,attr"`
	Binding string       `xml:"binding,attr"`
	Address *wsdlAddress `xml:"http://schemas.xmlsoap.org/wsdl/soap/ address"`
}

type wsdlAddress struct {
	Location string `xml:"location,attr"`
}

func FetchDescription(ctx context.Context, client *http.Client, url string, operation string) (Description, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Description{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Description{}, fmt.Errorf("failed to fetch service description: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Description{}, fmt.Errorf("unexpected status code fetching service description: %d", resp.StatusCode)
	}

	return ParseDescription(resp.Body, operation)
}

// ParseDescription reads a WSDL 1.1 document and resolves the SOAP 1.1
// binding of operation. Address is empty if no port exposes that binding.
func ParseDescription(r io.Reader, operation string) (Description, error) {
	var defs wsdlDefinitions
	if err := xml.NewDecoder(r).Decode(&defs); err != nil {
		return Description{}, fmt.Errorf("failed to decode service description: %w", err)
	}

	for _, binding := range defs.Bindings {
		if binding.Soap == nil {
			continue // not a SOAP 1.1 binding
		}
		for _, op := range binding.Operations {
			if op.Name != operation || op.Soap == nil {
				continue
			}
			return Description{
				Namespace:  defs.TargetNamespace,
				Address:    portAddress(defs.Services, binding.Name),
				SoapAction: op.Soap.SoapAction,
			}, nil
		}
	}

	return Description{}, fmt.Errorf("%w: %s", ErrOperationNotFound, operation)
}

func portAddress(services []wsdlService, binding string) string {
	for _, service := range services {
		for _, port := range service.Ports {
			if localName(port.Binding) == binding && port.Address != nil {
				return port.Address.Location
			}
		}
	}
	return ""
}

func localName(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[i+1:]
	}
	return qname
}
