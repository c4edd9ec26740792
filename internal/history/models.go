package history

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// RunRecord represents the run_records table: one row per rank's
// finalized numbering output for a run.
type RunRecord struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID            string    `gorm:"column:run_id;type:varchar(64);uniqueIndex:idx_run_rank"`
	Rank             int       `gorm:"column:rank;uniqueIndex:idx_run_rank"`
	WorldSize        int       `gorm:"column:world_size"`
	NumOwned         int32     `gorm:"column:num_owned"`
	NumLocalNodes    int32     `gorm:"column:num_local_nodes"`
	GlobalOffset     int64     `gorm:"column:global_offset"`
	NonLocalToGlobal JSONField `gorm:"column:nonlocal_to_global;type:json"`
	CheckpointKey    string    `gorm:"column:checkpoint_key;type:varchar(256)"`
	FatalFindings    int       `gorm:"column:fatal_findings"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for RunRecord.
func (RunRecord) TableName() string {
	return "run_records"
}

// SharerEdgeRecord represents the sharer_edges table: one row per
// (owner rank, peer rank) sharing relationship observed during a run,
// the relational counterpart of internal/graphexport's DOT output.
type SharerEdgeRecord struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	RunID      string `gorm:"column:run_id;type:varchar(64);index"`
	OwnerRank  int    `gorm:"column:owner_rank"`
	PeerRank   int    `gorm:"column:peer_rank"`
	SharedMine int32  `gorm:"column:shared_mine_count"`
}

// TableName returns the table name for SharerEdgeRecord.
func (SharerEdgeRecord) TableName() string {
	return "sharer_edges"
}

// JSONField is a custom type for storing []int64 slices as a JSON column.
type JSONField []byte

// Value implements driver.Valuer.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}

// EncodeInt64Slice marshals vs into a JSONField column value.
func EncodeInt64Slice(vs []int64) (JSONField, error) {
	if vs == nil {
		return nil, nil
	}
	b, err := json.Marshal(vs)
	if err != nil {
		return nil, err
	}
	return JSONField(b), nil
}

// DecodeInt64Slice unmarshals a JSONField column value back into a slice.
func DecodeInt64Slice(j JSONField) ([]int64, error) {
	if j == nil {
		return nil, nil
	}
	var vs []int64
	if err := json.Unmarshal(j, &vs); err != nil {
		return nil, err
	}
	return vs, nil
}
