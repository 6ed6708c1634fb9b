package firestore

import (
	"context"
	"net/url"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	runsCollection     = "runs"
	releasesCollection = "releases"
)

// Ledger persists run records and release progress in Firestore
type Ledger struct {
	client *firestore.Client
	prefix string
}

var _ interfaces.LedgerStore = (*Ledger)(nil)

// New connects to the database. collectionPrefix namespaces the collections
// so several deployments can share one database.
func New(ctx context.Context, projectID, databaseID, collectionPrefix, credentialsFile string) (*Ledger, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
		)
	}

	return &Ledger{client: client, prefix: collectionPrefix}, nil
}

// Close releases the client
func (l *Ledger) Close() error {
	return l.client.Close()
}

func (l *Ledger) collection(name string) *firestore.CollectionRef {
	return l.client.Collection(l.prefix + name)
}

// docID makes a key usable as a document ID, which must not contain "/"
func docID(key string) string {
	return url.PathEscape(key)
}

func (l *Ledger) GetRun(ctx context.Context, id model.RunID) (*model.Run, error) {
	var run model.Run
	found, err := l.get(ctx, l.collection(runsCollection).Doc(docID(id.String())), &run)
	if err != nil || !found {
		return nil, err
	}
	return &run, nil
}

func (l *Ledger) PutRun(ctx context.Context, run *model.Run) error {
	if _, err := l.collection(runsCollection).Doc(docID(run.ID.String())).Set(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to save run", goerr.V("run_id", run.ID))
	}
	return nil
}

func (l *Ledger) GetRecord(ctx context.Context, key string) (*model.LedgerRecord, error) {
	var record model.LedgerRecord
	found, err := l.get(ctx, l.collection(releasesCollection).Doc(docID(key)), &record)
	if err != nil || !found {
		return nil, err
	}
	return &record, nil
}

func (l *Ledger) PutRecord(ctx context.Context, record *model.LedgerRecord) error {
	if _, err := l.collection(releasesCollection).Doc(docID(record.Key)).Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to save ledger record", goerr.V("key", record.Key))
	}
	return nil
}

func (l *Ledger) get(ctx context.Context, doc *firestore.DocumentRef, dst any) (bool, error) {
	snap, err := doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get document", goerr.V("path", doc.Path))
	}
	if err := snap.DataTo(dst); err != nil {
		return false, goerr.Wrap(err, "failed to decode document", goerr.V("path", doc.Path))
	}
	return true, nil
}
