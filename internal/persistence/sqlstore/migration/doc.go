// Package migration applies versioned SQL files to the placement database.
//
// Migration files follow the naming convention {version}_{description}.sql
// (for example "001_initial_schema.sql") and are read from an fs.FS, which
// lets the service embed its schema in the binary. Applied versions are
// tracked in a schema_migrations table so each file runs exactly once.
//
// Example usage:
//
//	manager := migration.NewMigrationManager(
//		migration.NewFileScanner(files),
//		migration.NewExecutor(db, rebind),
//		".",
//		logger,
//	)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
