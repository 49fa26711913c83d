package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	clouderrorreporting "google.golang.org/api/clouderrorreporting/v1beta1"
	"google.golang.org/api/option"

	"github.com/next-trace/scg-report/report"
)

// GoogleConfig configures the Cloud Error Reporting sink.
type GoogleConfig struct {
	ProjectID       string
	APIKey          string // used instead of OAuth credentials when set
	CredentialsFile string // service account JSON; application default credentials when empty
	Endpoint        string // overrides the API base URL (tests, private endpoints)
	HTTPClient      *http.Client
}

// Google sends reports to the Cloud Error Reporting events:report API.
type Google struct {
	project string
	events  *clouderrorreporting.ProjectsEventsService
}

// NewGoogle builds the API client. Authentication resolution order:
// HTTPClient, APIKey, CredentialsFile, application default credentials.
func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("google transport: project id is required")
	}

	var opts []option.ClientOption

	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		client, err := google.DefaultClient(ctx, clouderrorreporting.CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("google transport: default credentials: %w", err)
		}

		opts = append(opts, option.WithHTTPClient(client))
	}

	svc, err := clouderrorreporting.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google transport: new service: %w", err)
	}

	return &Google{
		project: "projects/" + cfg.ProjectID,
		events:  svc.Projects.Events,
	}, nil
}

// SendError submits r as a ReportedErrorEvent.
func (g *Google) SendError(ctx context.Context, r *report.Report) error {
	if r == nil {
		return ErrNilReport
	}

	if _, err := g.events.Report(g.project, toEvent(r.Payload())).Context(ctx).Do(); err != nil {
		return fmt.Errorf("google transport: report event: %w", err)
	}

	return nil
}

func toEvent(p report.Payload) *clouderrorreporting.ReportedErrorEvent {
	req := p.Context.HTTPRequest
	loc := p.Context.ReportLocation

	return &clouderrorreporting.ReportedErrorEvent{
		EventTime: p.EventTime,
		Message:   p.Message,
		ServiceContext: &clouderrorreporting.ServiceContext{
			Service: p.ServiceContext.Service,
			Version: p.ServiceContext.Version,
		},
		Context: &clouderrorreporting.ErrorContext{
			HttpRequest: &clouderrorreporting.HttpRequestContext{
				Method:             req.Method,
				Url:                req.URL,
				UserAgent:          req.UserAgent,
				Referrer:           req.Referrer,
				ResponseStatusCode: int64(req.ResponseStatusCode),
				RemoteIp:           req.RemoteIP,
				// The generated client drops zero values unless forced.
				ForceSendFields: []string{"Method", "Url", "UserAgent", "Referrer", "ResponseStatusCode", "RemoteIp"},
			},
			User: p.Context.User,
			ReportLocation: &clouderrorreporting.SourceLocation{
				FilePath:        loc.FilePath,
				LineNumber:      int64(loc.LineNumber),
				FunctionName:    loc.FunctionName,
				ForceSendFields: []string{"FilePath", "LineNumber", "FunctionName"},
			},
			ForceSendFields: []string{"User"},
		},
		ForceSendFields: []string{"Message"},
	}
}
