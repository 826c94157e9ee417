package registry

import (
	"database/sql"
	"fmt"

	"github.com/ChAoSUnItY/Yakou/internal/typesystem"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, registered via database/sql
)

// LoadSQLite populates a Registry from a previously-compiled class
// catalog stored in a SQLite database at path. This is the optional
// boundary adapter spec §6 allows for a registry "pre-populated from a
// prior build or an external index" — an ordinary compilation run never
// needs it; it exists for incremental/multi-module builds that persist
// their class catalog between invocations.
//
// Schema (three tables, one row per declared member):
//
//	classes(reference TEXT PRIMARY KEY)
//	fields(class_reference, name, type_name, mut, comp, accessor)
//	signatures(class_reference, name, param_types, return_type, comp, accessor)
//
// param_types is a comma-joined list of primitive/class names; array
// types are not representable in this minimal schema and are
// rejected with an error, per the "minimal boundary adapter" scope this
// loader occupies.
func LoadSQLite(path string) (*Registry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("registry: opening %s: %w", path, err)
	}
	defer db.Close()

	reg := New()
	byRef := make(map[string]*typesystem.ClassType)

	refRows, err := db.Query(`SELECT reference FROM classes`)
	if err != nil {
		return nil, fmt.Errorf("registry: reading classes: %w", err)
	}
	defer refRows.Close()
	for refRows.Next() {
		var reference string
		if err := refRows.Scan(&reference); err != nil {
			return nil, fmt.Errorf("registry: scanning class row: %w", err)
		}
		ct := &typesystem.ClassType{Reference: reference}
		byRef[reference] = ct
	}
	if err := refRows.Err(); err != nil {
		return nil, err
	}

	fieldRows, err := db.Query(`SELECT class_reference, name, type_name, mut, comp, accessor FROM fields`)
	if err != nil {
		return nil, fmt.Errorf("registry: reading fields: %w", err)
	}
	defer fieldRows.Close()
	for fieldRows.Next() {
		var classRef, name, typeName string
		var mut, comp bool
		var accessor int
		if err := fieldRows.Scan(&classRef, &name, &typeName, &mut, &comp, &accessor); err != nil {
			return nil, fmt.Errorf("registry: scanning field row: %w", err)
		}
		ct, ok := byRef[classRef]
		if !ok {
			return nil, fmt.Errorf("registry: field %q references unknown class %q", name, classRef)
		}
		t, err := resolveStoredType(typeName, byRef)
		if err != nil {
			return nil, err
		}
		ct.Fields = append(ct.Fields, typesystem.Field{
			Name: name, Type: t, Mut: mut, Comp: comp, Accessor: typesystem.Accessor(accessor),
		})
	}
	if err := fieldRows.Err(); err != nil {
		return nil, err
	}

	sigRows, err := db.Query(`SELECT class_reference, name, param_types, return_type, comp, accessor FROM signatures`)
	if err != nil {
		return nil, fmt.Errorf("registry: reading signatures: %w", err)
	}
	defer sigRows.Close()
	for sigRows.Next() {
		var classRef, name, paramTypesCSV, returnTypeName string
		var comp bool
		var accessor int
		if err := sigRows.Scan(&classRef, &name, &paramTypesCSV, &returnTypeName, &comp, &accessor); err != nil {
			return nil, fmt.Errorf("registry: scanning signature row: %w", err)
		}
		ct, ok := byRef[classRef]
		if !ok {
			return nil, fmt.Errorf("registry: signature %q references unknown class %q", name, classRef)
		}
		paramTypes, err := splitStoredTypes(paramTypesCSV, byRef)
		if err != nil {
			return nil, err
		}
		returnType, err := resolveStoredType(returnTypeName, byRef)
		if err != nil {
			return nil, err
		}
		ct.Signatures = append(ct.Signatures, typesystem.Signature{
			Owner: classRef, Name: name, ParamTypes: paramTypes, ReturnType: returnType,
			Comp: comp, Accessor: typesystem.Accessor(accessor),
		})
	}
	if err := sigRows.Err(); err != nil {
		return nil, err
	}

	for _, ct := range byRef {
		reg.Put(ct)
	}
	reg.Seal()
	return reg, nil
}

func resolveStoredType(name string, known map[string]*typesystem.ClassType) (typesystem.Type, error) {
	if p, ok := typesystem.PrimitiveByName(name); ok {
		return typesystem.PrimitiveType{Kind: p}, nil
	}
	if ct, ok := known[name]; ok {
		return ct, nil
	}
	return nil, fmt.Errorf("registry: unknown stored type %q (array types are not supported by the SQLite loader)", name)
}

func splitStoredTypes(csv string, known map[string]*typesystem.ClassType) ([]typesystem.Type, error) {
	if csv == "" {
		return nil, nil
	}
	var out []typesystem.Type
	start := 0
	for i := 0; i <= len(csv); i++ {
		if i == len(csv) || csv[i] == ',' {
			t, err := resolveStoredType(csv[start:i], known)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
			start = i + 1
		}
	}
	return out, nil
}
