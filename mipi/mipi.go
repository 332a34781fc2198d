// Package mipi is a client for the National Grid Market Information
// Provision Initiative (MIPI) public SOAP web service for UK gas data.
package mipi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/icodeforyou/mipi-go/gasday"
)

const (
	ReportSystemAveragePrice = "SAP, Actual Day"
	ReportDemandD6           = "Demand Actual, NTS, D+6"
	ReportDemandD1           = "Demand Actual, NTS, D+1"
	ReportPowerstations      = "NTS Volume Offtaken, Powerstations Total"

	CodeSystemAveragePrice = "SAP"
	CodeDemandD6           = "DP6"
	CodeDemandD1           = "DP1"
	CodePowerstations      = "PS"

	DefaultNamespace = "http://www.NationalGrid.com/MIPI/"

	noDataHint = "if you're expecting something try reducing the length of the from-to interval"
)

var physicalFlowReports = map[string]string{
	CodeDemandD6:      ReportDemandD6,
	CodeDemandD1:      ReportDemandD1,
	CodePowerstations: ReportPowerstations,
}

// Mipi is safe for concurrent use, nothing is mutated after construction.
type Mipi struct {
	logger      *slog.Logger
	client      *http.Client
	description Description
}

// New reads the service description at wsdlUrl once and returns a client
// bound to the GetPublicationDataWM operation. A nil client means
// http.Client defaults.
func New(ctx context.Context, logger *slog.Logger, wsdlUrl string, client *http.Client) (*Mipi, error) {
	if client == nil {
		client = &http.Client{}
	}

	desc, err := FetchDescription(ctx, client, wsdlUrl, OperationGetPublicationDataWM)
	if err != nil {
		return nil, fmt.Errorf("failed to load mipi service description: %w", err)
	}
	if desc.Address == "" {
		desc.Address, _, _ = strings.Cut(wsdlUrl, "?")
	}
	if desc.Namespace == "" {
		desc.Namespace = DefaultNamespace
	}

	return NewFromDescription(logger, client, desc), nil
}

func NewFromDescription(logger *slog.Logger, client *http.Client, desc Description) *Mipi {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Mipi{
		logger:      logger.With(slog.String("module", "mipi")),
		client:      client,
		description: desc,
	}
}

func (m *Mipi) Description() Description {
	return m.description
}

// Fetch returns every record of reportName published for the gas days from..to.
// A report without data yields an empty table and no error.
func (m *Mipi) Fetch(ctx context.Context, reportName string, from, to gasday.Date, latest bool) (*Table, error) {
	return m.FetchQuery(ctx, Query{ReportName: reportName, From: from, To: to, Latest: latest})
}

func (m *Mipi) FetchQuery(ctx context.Context, q Query) (*Table, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	m.logger.Debug("fetching report",
		slog.String("report", q.ReportName),
		slog.String("from", q.From.String()),
		slog.String("to", q.To.String()),
		slog.Bool("latest", q.Latest))

	res, err := doCall[getPublicationDataWMResponse](ctx, m.client, m.description, getPublicationDataWM{
		Xmlns:     m.description.Namespace,
		ReqObject: newPublicationRequest(q),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", q.ReportName, err)
	}

	if res.Result == nil || res.Result.Nil == "true" || len(res.Result.Objects) == 0 {
		return m.noData(q.ReportName), nil
	}

	data := res.Result.Objects[0].Data
	if data == nil {
		return nil, fmt.Errorf("failed to fetch %s: %w: missing PublicationObjectData", q.ReportName, ErrMalformedResponse)
	}
	if len(data.Records) == 0 {
		return m.noData(q.ReportName), nil
	}

	table, err := newTable(q.ReportName, data.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", q.ReportName, err)
	}

	m.logger.Info(fmt.Sprintf("%s gathering complete", q.ReportName), slog.Int("rows", table.Len()))

	return table, nil
}

func (m *Mipi) noData(reportName string) *Table {
	m.logger.Warn(fmt.Sprintf("no data for: %s", reportName),
		slog.String("report", reportName),
		slog.String("hint", noDataHint))
	return &Table{ReportName: reportName}
}

// SystemAveragePrice fetches the System Average Price per gas day.
func (m *Mipi) SystemAveragePrice(ctx context.Context, from, to gasday.Date, latest bool) (*Table, error) {
	return m.Fetch(ctx, ReportSystemAveragePrice, from, to, latest)
}

// PhysicalFlows fetches NTS flows in mcm per gas day. code is one of
//
//	DP6 - total NTS demand published six days after the gas day, the final settled value
//	DP1 - total NTS demand published the day after the gas day, not final
//	PS  - NTS offtake to powerstations
//
// An empty code means DP6.
func (m *Mipi) PhysicalFlows(ctx context.Context, from, to gasday.Date, code string, latest bool) (*Table, error) {
	reportName, err := ReportNameForCode(code)
	if err != nil {
		return nil, err
	}
	return m.Fetch(ctx, reportName, from, to, latest)
}

func ReportNameForCode(code string) (string, error) {
	if code == "" {
		code = CodeDemandD6
	}
	name, ok := physicalFlowReports[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownReportCode, code)
	}
	return name, nil
}

// ResolveReport maps a preset code, including "SAP", to its report name.
// Anything else is taken to be a report name already.
func ResolveReport(nameOrCode string) string {
	if nameOrCode == CodeSystemAveragePrice {
		return ReportSystemAveragePrice
	}
	if name, ok := physicalFlowReports[nameOrCode]; ok {
		return name
	}
	return nameOrCode
}

func newPublicationRequest(q Query) publicationRequest {
	latestFlag := "N"
	if q.Latest {
		latestFlag = "Y"
	}
	return publicationRequest{
		LatestFlag:        latestFlag,
		ApplicableForFlag: "Y", // query by gas day
		ToDate:            q.To.String(),
		FromDate:          q.From.String(),
		DateType:          "GASDAY",
		PublicationObjectNameList: publicationNameList{
			Names: []string{q.ReportName},
		},
	}
}
