package sheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/m3rciful/tracker/internal/netutil"
)

const valueInputOption = "USER_ENTERED"

// Google implements Values with the Sheets v4 API using a service account.
type Google struct {
	svc *gsheets.SpreadsheetsValuesService
}

// NewGoogle authenticates with the service account key at credentialsFile.
// Each call is sent once; transport failures are returned to the caller.
func NewGoogle(ctx context.Context, credentialsFile string) (*Google, error) {
	key, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(key, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	authCtx := context.WithValue(context.Background(), oauth2.HTTPClient, netutil.NewDirectClient())
	return newGoogle(ctx, option.WithHTTPClient(jwt.Client(authCtx)))
}

func newGoogle(ctx context.Context, opts ...option.ClientOption) (*Google, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Google{svc: svc.Spreadsheets.Values}, nil
}

// Get implements Values.
func (g *Google) Get(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	resp, err := g.svc.Get(spreadsheetID, rng).MajorDimension("ROWS").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return toStrings(resp.Values), nil
}

// BatchGet implements Values. Results are returned in request order.
func (g *Google) BatchGet(ctx context.Context, spreadsheetID string, ranges []string) ([][][]string, error) {
	resp, err := g.svc.BatchGet(spreadsheetID).Ranges(ranges...).MajorDimension("ROWS").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([][][]string, len(ranges))
	for i, vr := range resp.ValueRanges {
		if i >= len(out) || vr == nil {
			continue
		}
		out[i] = toStrings(vr.Values)
	}
	return out, nil
}

// Update implements Values.
func (g *Google) Update(ctx context.Context, spreadsheetID, rng string, rows [][]Cell) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, c := range row {
			values[i][j] = c.Input()
		}
	}
	_, err := g.svc.Update(spreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	return err
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out
}
