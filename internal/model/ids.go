package model

import (
	"reflect"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// RegisterIDCallback assigns a fresh UUID to every created row whose uuid
// primary key is still zero. It replaces a database-side default so the same
// models migrate on postgres and on the in-memory sqlite used by tests.
func RegisterIDCallback(db *gorm.DB) error {
	return db.Callback().Create().Before("gorm:create").Register("fuelstation:assign_id", assignIDs)
}

func assignIDs(db *gorm.DB) {
	if db.Statement.Schema == nil {
		return
	}
	field := db.Statement.Schema.PrioritizedPrimaryField
	if field == nil || field.FieldType != uuidType {
		return
	}
	ctx := db.Statement.Context
	rv := reflect.Indirect(db.Statement.ReflectValue)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			elem := reflect.Indirect(rv.Index(i))
			if _, zero := field.ValueOf(ctx, elem); zero {
				_ = field.Set(ctx, elem, uuid.New())
			}
		}
	case reflect.Struct:
		if _, zero := field.ValueOf(ctx, rv); zero {
			_ = field.Set(ctx, rv, uuid.New())
		}
	}
}
