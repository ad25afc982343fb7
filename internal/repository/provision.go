package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

// StoreSource hands out the store for a set of coordinates. The store stays
// usable until release is called. *Registry is the production implementation.
type StoreSource interface {
	Get(ctx context.Context, coords entity.StoreCoordinates) (store Store, release func(), err error)
}

// ProvisionResult is the outcome of a successful provisioning call.
type ProvisionResult struct {
	Success bool   `json:"success"`
	SQL     string `json:"sql"`
	Created bool   `json:"created"`
}

// ConnectionResult is the outcome of a connectivity check.
type ConnectionResult struct {
	Success      bool `json:"success"`
	SchemaExists bool `json:"schemaExists"`
}

// Provisioner ensures a log table exists in the caller's store.
type Provisioner struct {
	stores StoreSource
	logger *slog.Logger
}

func NewProvisioner(stores StoreSource, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{stores: stores, logger: logger}
}

func manualMessage(table string) string {
	return fmt.Sprintf("table %q could not be created automatically; create it manually with the provided SQL", table)
}

// Provision renders DDL for schema and makes sure the table exists. When the
// store cannot execute DDL the table must already exist; otherwise the caller
// gets the statement to run by hand.
func (p *Provisioner) Provision(ctx context.Context, coords entity.StoreCoordinates, schema entity.StorageSchema) (ProvisionResult, error) {
	start := time.Now()
	coords = coords.Normalize()
	if schema.TableName == "" {
		schema.TableName = coords.TableName
	}
	if err := common.ValidateStruct(coords); err != nil {
		return ProvisionResult{}, err
	}
	if err := common.ValidateStruct(schema); err != nil {
		return ProvisionResult{}, err
	}

	store, release, err := p.stores.Get(ctx, coords)
	if err != nil {
		if ae := asInputError(err); ae != nil {
			return ProvisionResult{}, ae
		}
		p.logger.Warn("store.provision.connect_failed", "provider", coords.Provider, "error", err)
		return ProvisionResult{}, common.ProvisioningError(common.CodeConnectionFailed,
			"could not connect to the store: "+backendMessage(err), "", err)
	}
	defer release()

	ddl, err := RenderDDL(store.Dialect(), schema)
	if err != nil {
		return ProvisionResult{}, common.ProvisioningError(common.CodeProvisionFailed, err.Error(), "", err)
	}
	log := p.logger.With("provider", coords.Provider, "table", schema.TableName)

	if !coords.DDLCapable() {
		exists, err := store.TableExists(ctx, schema.TableName)
		if err != nil {
			log.Warn("store.provision.lookup_failed", "error", err)
			return ProvisionResult{}, common.ProvisioningError(common.CodeProvisionFailed,
				"could not verify the table: "+backendMessage(err), ddl, err)
		}
		if !exists {
			log.Info("store.provision.manual_required")
			return ProvisionResult{}, common.ProvisioningError(common.CodeManualProvisioning,
				manualMessage(schema.TableName), ddl, nil)
		}
		log.Info("store.provision.ok", "created", false, "elapsed_ms", time.Since(start).Milliseconds())
		return ProvisionResult{Success: true, SQL: ddl, Created: false}, nil
	}

	// existence before the statement only feeds the Created flag; IF NOT
	// EXISTS keeps concurrent provisioning safe
	existed, lookupErr := store.TableExists(ctx, schema.TableName)
	if lookupErr != nil {
		log.Debug("store.provision.lookup_failed", "error", lookupErr)
	}

	if err := store.ExecDDL(ctx, ddl); err != nil {
		class := Classify(err)
		log.Warn("store.provision.failed", "class", class.String(), "error", err)
		switch class {
		case ClassPrivilege, ClassMissingCapability:
			return ProvisionResult{}, common.ProvisioningError(common.CodeManualProvisioning,
				manualMessage(schema.TableName), ddl, err)
		}
		return ProvisionResult{}, common.ProvisioningError(common.CodeProvisionFailed,
			"table creation failed: "+backendMessage(err), ddl, err)
	}

	created := lookupErr == nil && !existed
	log.Info("store.provision.ok", "created", created, "elapsed_ms", time.Since(start).Milliseconds())
	return ProvisionResult{Success: true, SQL: ddl, Created: created}, nil
}

// TestConnection checks the store answers and whether the table exists.
func (p *Provisioner) TestConnection(ctx context.Context, coords entity.StoreCoordinates) (ConnectionResult, error) {
	coords = coords.Normalize()
	if err := common.ValidateStruct(coords); err != nil {
		return ConnectionResult{}, err
	}
	store, release, err := p.stores.Get(ctx, coords)
	if err != nil {
		if ae := asInputError(err); ae != nil {
			return ConnectionResult{}, ae
		}
		return ConnectionResult{}, common.ProvisioningError(common.CodeConnectionFailed,
			"could not connect to the store: "+backendMessage(err), "", err)
	}
	defer release()
	if err := store.Ping(ctx); err != nil {
		p.logger.Info("store.test.failed", "provider", coords.Provider, "error", err)
		return ConnectionResult{}, common.ProvisioningError(common.CodeConnectionFailed,
			"could not connect to the store: "+backendMessage(err), "", err)
	}
	exists, err := store.TableExists(ctx, coords.TableName)
	if err != nil {
		return ConnectionResult{}, common.ProvisioningError(common.CodeConnectionFailed,
			"connected, but the table lookup failed: "+backendMessage(err), "", err)
	}
	p.logger.Info("store.test.ok", "provider", coords.Provider, "table", coords.TableName, "exists", exists)
	return ConnectionResult{Success: true, SchemaExists: exists}, nil
}

// asInputError passes through caller mistakes raised while opening a store.
func asInputError(err error) *common.AppError {
	if common.IsKind(err, common.KindInputValidation) {
		return common.AsAppError(err)
	}
	return nil
}
