package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"budgetbook/internal/core"
)

const (
	// Azurite development storage account.
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// blobAPI is the subset of *azblob.Client used by the uploader.
type blobAPI interface {
	CreateContainer(ctx context.Context, containerName string, o *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error)
	UploadBuffer(ctx context.Context, containerName, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// BlobUploader stores CSV exports in Azure Blob Storage under
// "<user>/budget-YYYY-MM.csv".
type BlobUploader struct {
	client    blobAPI
	container string
	user      string
}

// NewBlobUploader connects to serviceURL. Plain http endpoints are treated as
// Azurite and use the development shared key; anything else authenticates
// with DefaultAzureCredential.
func NewBlobUploader(serviceURL, container, user string) (*BlobUploader, error) {
	if serviceURL == "" {
		return nil, errors.New("missing blob service url")
	}
	var client *azblob.Client
	if isLocal(serviceURL) {
		slog.Info("Using Azurite shared key credentials for blob export")
		cred, err := azblob.NewSharedKeyCredential(azuriteAccountName, azuriteAccountKey)
		if err != nil {
			return nil, fmt.Errorf("shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("blob client with shared key: %w", err)
		}
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("default azure credential: %w", err)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("blob client: %w", err)
		}
	}
	return &BlobUploader{client: client, container: container, user: user}, nil
}

// ExportRows uploads rows as the month's CSV file.
func (u *BlobUploader) ExportRows(ctx context.Context, month core.MonthKey, rows [][]string) error {
	var b strings.Builder
	if err := WriteCSV(&b, rows); err != nil {
		return err
	}

	_, err := u.client.CreateContainer(ctx, u.container, nil)
	var respErr *azcore.ResponseError
	if err != nil && !(errors.As(err, &respErr) && respErr.ErrorCode == "ContainerAlreadyExists") {
		slog.WarnContext(ctx, "Failed to create export container", "container", u.container, "error", err)
	}

	name := u.BlobName(month)
	if _, err := u.client.UploadBuffer(ctx, u.container, name, []byte(b.String()), nil); err != nil {
		return fmt.Errorf("upload %s/%s: %w", u.container, name, err)
	}
	slog.InfoContext(ctx, "Export uploaded", "container", u.container, "blob", name, "rows", len(rows))
	return nil
}

func (u *BlobUploader) BlobName(month core.MonthKey) string {
	if u.user == "" {
		return FileName(month)
	}
	return u.user + "/" + FileName(month)
}

func isLocal(serviceURL string) bool {
	return strings.HasPrefix(serviceURL, "http://")
}
