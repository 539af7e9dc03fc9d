package types

// UpdateOutcome tells apart the results of a partial update.
type UpdateOutcome int

const (
	Updated UpdateOutcome = iota
	NoFieldsProvided
	UpdateNotFound
)

var updateOutcomeText = map[UpdateOutcome]string{
	Updated:          "updated",
	NoFieldsProvided: "no_fields_provided",
	UpdateNotFound:   "not_found",
}

func (o UpdateOutcome) String() string {
	if s, ok := updateOutcomeText[o]; ok {
		return s
	}
	return "unknown"
}

// UpdateResult is returned by RecordStore.Update. Record is set only when Outcome is Updated.
type UpdateResult struct {
	Outcome UpdateOutcome
	Record  Record
}

// UpdatedWith wraps the post-update record.
func UpdatedWith(r Record) UpdateResult { return UpdateResult{Outcome: Updated, Record: r} }

// UpdateFields drops the immutable id from a caller update set.
func UpdateFields(updates Record) Record {
	fields := make(Record, len(updates))
	for k, v := range updates {
		if k == IDField {
			continue
		}
		fields[k] = v
	}
	return fields
}
