package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"bitbucket.org/mmdatafocus/rentnotice_backend/utils"
)

// FirestoreDocuments adapts one Firestore collection to StateDocuments.
type FirestoreDocuments struct {
	col *firestore.CollectionRef
}

func NewFirestoreDocuments(client *firestore.Client, collection string) *FirestoreDocuments {
	return &FirestoreDocuments{col: client.Collection(collection)}
}

func (d *FirestoreDocuments) Get(ctx context.Context, id string) (map[string]interface{}, bool, error) {
	snap, err := d.col.Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return snap.Data(), true, nil
}

func (d *FirestoreDocuments) Set(ctx context.Context, id string, data map[string]interface{}, merge bool) error {
	if merge {
		_, err := d.col.Doc(id).Set(ctx, data, firestore.MergeAll)
		return err
	}
	_, err := d.col.Doc(id).Set(ctx, data)
	return err
}

// FirestoreAccounts reads the account directory: one document per tenant
// account carrying its settings.
type FirestoreAccounts struct {
	col *firestore.CollectionRef
}

func NewFirestoreAccounts(client *firestore.Client, collection string) *FirestoreAccounts {
	return &FirestoreAccounts{col: client.Collection(collection)}
}

func (a *FirestoreAccounts) Get(ctx context.Context, accountId string) (models.AccountRecord, error) {
	snap, err := a.col.Doc(accountId).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.AccountRecord{}, utils.ErrorAccountNotFound
	}
	if err != nil {
		return models.AccountRecord{}, err
	}
	return accountFromData(accountId, snap.Data())
}

func (a *FirestoreAccounts) List(ctx context.Context) ([]models.AccountRecord, error) {
	var out []models.AccountRecord
	iter := a.col.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := accountFromData(snap.Ref.ID, snap.Data())
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func accountFromData(accountId string, data map[string]interface{}) (models.AccountRecord, error) {
	var settings models.AccountSettings
	if err := utils.FromFieldMap(data, &settings); err != nil {
		return models.AccountRecord{}, err
	}
	return models.AccountRecord{AccountId: accountId, Settings: settings}, nil
}
