package mipi

import "encoding/xml"

const (
	soapEnvelopeNs = "http://schemas.xmlsoap.org/soap/envelope/"
	xsiNs          = "http://www.w3.org/2001/XMLSchema-instance"

	OperationGetPublicationDataWM = "GetPublicationDataWM"
)

type getPublicationDataWM struct {
	XMLName   xml.Name           `xml:"GetPublicationDataWM"`
	Xmlns     string             `xml:"xmlns,attr"`
	ReqObject publicationRequest `xml:"reqObject"`
}

// Element order follows the CLSRequestObject sequence in the service schema.
type publicationRequest struct {
	LatestFlag                string             `xml:"LatestFlag"`
	ApplicableForFlag         string             `xml:"ApplicableForFlag"`
	ToDate                    string             `xml:"ToDate"`
	FromDate                  string             `xml:"FromDate"`
	DateType                  string             `xml:"DateType"`
	PublicationObjectNameList publicationNameList `xml:"PublicationObjectNameList"`
}

type publicationNameList struct {
	Names []string `xml:"string"`
}

type getPublicationDataWMResponse struct {
	XMLName xml.Name           `xml:"GetPublicationDataWMResponse"`
	Result  *publicationResult `xml:"GetPublicationDataWMResult"`
}

type publicationResult struct {
	Nil     string              `xml:"http://www.w3.org/2001/XMLSchema-instance nil,attr"`
	Objects []publicationObject `xml:"CLSMIPIPublicationObjectBE"`
}

type publicationObject struct {
	Name string                 `xml:"PublicationObjectName"`
	Data *publicationObjectData `xml:"PublicationObjectData"`
}

type publicationObjectData struct {
	Records []rawRecord `xml:"CLSPublicationObjectDataBE"`
}

type rawRecord struct {
	Fields []rawField `xml:",any"`
}

type rawField struct {
	XMLName xml.Name
	Nil     string `xml:"http://www.w3.org/2001/XMLSchema-instance nil,attr"`
	Value   string `xml:",chardata"`
}

type requestEnvelope struct {
	XMLName xml.Name    `xml:"soap:Envelope"`
	Soap    string      `xml:"xmlns:soap,attr"`
	Xsi     string      `xml:"xmlns:xsi,attr"`
	Body    requestBody `xml:"soap:Body"`
}

type requestBody struct {
	Content any
}

type responseEnvelope[T any] struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    struct {
		Fault   *soapFault `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`
		Content *T         `xml:",any"`
	} `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}
