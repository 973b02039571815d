package data

import (
	"database/sql"
)

type Models struct {
	Activities *ActivityModel
}

func NewModels(db *sql.DB, maxActivities int) *Models {
	return &Models{
		Activities: &ActivityModel{DB: db, MaxActivities: maxActivities},
	}
}
