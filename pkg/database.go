package xtc

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx"
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type GeometryEntry struct {
	Parent      string  `db:"Parent"`
	ParentIndex int     `db:"ParentIndex"`
	Object      string  `db:"Object"`
	ObjectIndex int     `db:"ObjectIndex"`
	X0          float64 `db:"X0"`
	Y0          float64 `db:"Y0"`
	Z0          float64 `db:"Z0"`
	RotZ        float64 `db:"RotZ"`
	RotY        float64 `db:"RotY"`
	RotX        float64 `db:"RotX"`
	TiltZ       float64 `db:"TiltZ"`
	TiltY       float64 `db:"TiltY"`
	TiltX       float64 `db:"TiltX"`
}

// GetGeometryFromDB reads the detector alignment valid for a run from the
// conditions database. Rows come back in deployment order, which is the
// panel index order assembly expects.
func GetGeometryFromDB(db *sqlx.DB, detector string, runNumber int) (*DetectorGeometry, error) {
	query := "SELECT Parent, ParentIndex, Object, ObjectIndex, X0, Y0, Z0, RotZ, RotY, RotX, TiltZ, TiltY, TiltX FROM DetectorGeometry WHERE Detector = '%s' AND MinRun <= %d AND MaxRun >= %d ORDER BY ObjectIndex"
	query = fmt.Sprintf(query, detector, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading %s geometry from database", detector)
		logger.Info(message, "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	geometry := &DetectorGeometry{}
	for rows.Next() {
		result := GeometryEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		geometry.Panels = append(geometry.Panels, PanelGeometry{
			Parent:      result.Parent,
			ParentIndex: result.ParentIndex,
			Object:      result.Object,
			ObjectIndex: result.ObjectIndex,
			X0:          result.X0,
			Y0:          result.Y0,
			Z0:          result.Z0,
			RotZ:        result.RotZ,
			RotY:        result.RotY,
			RotX:        result.RotX,
			TiltZ:       result.TiltZ,
			TiltY:       result.TiltY,
			TiltX:       result.TiltX,
		})
	}

	if len(geometry.Panels) == 0 {
		return nil, fmt.Errorf("no geometry found for detector %s, run %d", detector, runNumber)
	}
	return geometry, nil
}

// LoadGeometry resolves the geometry source: a file when one is configured
// or the database otherwise.
func LoadGeometry(db *sqlx.DB) (*DetectorGeometry, error) {
	config := GetConfiguration()
	if config.GeometryFile != "" {
		return ParseGeometryFile(config.GeometryFile)
	}
	if db == nil {
		return nil, fmt.Errorf("no geometry file configured and no database connection")
	}
	return GetGeometryFromDB(db, config.DetectorName, config.RunNumber)
}
