package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/canopy-network/accountsx/pkg/db/models/indexer"
	"github.com/canopy-network/accountsx/pkg/db/transform"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// accountsBySuffixQuery matches account ids ending in ".<top_level_account>.<network>".
// Both values are bound. LIKE wildcards ('%', '_') inside the bound top-level account
// are not escaped and keep their pattern meaning.
var accountsBySuffixQuery = `SELECT ` + strings.Join(indexer.AccountColumns, ", ") + `
	FROM accounts
	WHERE account_id LIKE '%.' || $1::text || '.' || $2::text`

// QueryError carries the backend diagnostic for a failed account query.
type QueryError struct {
	Network    string
	Diagnostic string
	Err        error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed on %s: %s", e.Network, e.Diagnostic)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (db *DB) queryError(err error) *QueryError {
	return &QueryError{Network: db.Network, Diagnostic: err.Error(), Err: err}
}

// QueryAccounts returns every account under topLevelAccount on this network, in
// the order the backend delivers them. A single attempt is made; failures come
// back as *QueryError. No matching rows yields an empty, non-nil slice.
func (db *DB) QueryAccounts(ctx context.Context, topLevelAccount string) ([]indexer.AccountRecord, error) {
	rows, err := db.querier.Query(ctx, accountsBySuffixQuery, topLevelAccount, db.Network)
	if err != nil {
		return nil, db.queryError(err)
	}
	defer rows.Close()

	out := make([]indexer.AccountRecord, 0)
	for rows.Next() {
		var (
			rec    indexer.AccountRecord
			height pgtype.Numeric
		)
		if err := rows.Scan(&rec.AccountID, &rec.CreatedByReceiptID, &rec.DeletedByReceiptID, &height); err != nil {
			return nil, db.queryError(err)
		}

		rec.LastUpdateBlockHeight = transform.NumericToInt128(height)
		if height.Valid && rec.LastUpdateBlockHeight == nil {
			db.Logger.Debug("Dropping block height that does not fit int128",
				zap.String("account_id", rec.AccountID))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, db.queryError(err)
	}

	return out, nil
}
