// Package aztables stores month documents in Azure Table Storage. The user is
// the partition key and the month is the row key.
package aztables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"budgetbook/internal/core"
	"budgetbook/internal/sheets"
)

const (
	DefaultTable = "monthsnapshots"

	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// tableAPI is the subset of *aztables.Client used by the store.
type tableAPI interface {
	UpsertEntity(ctx context.Context, entity []byte, options *aztables.UpsertEntityOptions) (aztables.UpsertEntityResponse, error)
	GetEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.GetEntityOptions) (aztables.GetEntityResponse, error)
	NewListEntitiesPager(options *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
}

type entity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	Document     string `json:"Document"`
}

// Store implements sheets.DocumentStore on one table.
type Store struct {
	client tableAPI
	table  string
}

var _ sheets.DocumentStore = (*Store)(nil)

// New connects to the table service at serviceURL and makes sure the table
// exists. http endpoints are treated as Azurite.
func New(ctx context.Context, serviceURL, table string) (*Store, error) {
	if serviceURL == "" {
		return nil, errors.New("missing table service url")
	}
	if table == "" {
		table = DefaultTable
	}

	var svc *aztables.ServiceClient
	if strings.HasPrefix(serviceURL, "http://") {
		slog.Info("Using Azurite credentials for table store")
		cred, err := aztables.NewSharedKeyCredential(azuriteAccountName, azuriteAccountKey)
		if err != nil {
			return nil, fmt.Errorf("shared key credential: %w", err)
		}
		svc, err = aztables.NewServiceClientWithSharedKey(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("table service client with shared key: %w", err)
		}
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("default azure credential: %w", err)
		}
		svc, err = aztables.NewServiceClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("table service client: %w", err)
		}
	}

	if _, err := svc.CreateTable(ctx, table, nil); err != nil {
		var azErr *azcore.ResponseError
		if !(errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists") {
			return nil, fmt.Errorf("create table %s: %w", table, err)
		}
	}

	slog.Info("Table store initialized", "table_url", serviceURL, "table", table)
	return &Store{client: svc.NewClient(table), table: table}, nil
}

func newWithClient(client tableAPI, table string) *Store {
	return &Store{client: client, table: table}
}

func (s *Store) Save(ctx context.Context, user string, doc core.Document) error {
	if !doc.MonthKey.Valid() {
		return core.ErrInvalidMonthKey
	}
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	body, err := json.Marshal(entity{PartitionKey: user, RowKey: doc.MonthKey.String(), Document: string(data)})
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}
	if _, err := s.client.UpsertEntity(ctx, body, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace}); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", user, doc.MonthKey, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, user string, month core.MonthKey) (core.Document, error) {
	resp, err := s.client.GetEntity(ctx, user, month.String(), nil)
	if err != nil {
		var azErr *azcore.ResponseError
		if errors.As(err, &azErr) && azErr.StatusCode == http.StatusNotFound {
			return core.Document{}, sheets.ErrNotFound
		}
		return core.Document{}, fmt.Errorf("get %s/%s: %w", user, month, err)
	}
	var e entity
	if err := json.Unmarshal(resp.Value, &e); err != nil {
		return core.Document{}, fmt.Errorf("unmarshal entity: %w", err)
	}
	return core.DecodeDocument([]byte(e.Document))
}

func (s *Store) Months(ctx context.Context, user string) ([]core.MonthKey, error) {
	filter := fmt.Sprintf("PartitionKey eq '%s'", strings.ReplaceAll(user, "'", "''"))
	sel := "RowKey"
	pager := s.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter, Select: &sel})

	var out []core.MonthKey
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list entities: %w", err)
		}
		for _, raw := range resp.Entities {
			var e entity
			if err := json.Unmarshal(raw, &e); err != nil {
				continue
			}
			if k := core.MonthKey(e.RowKey); k.Valid() {
				out = append(out, k)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
