// Package all wires all built-in storage backends into the storage factory.
//
// Importing it for side effects makes the following storage kinds available:
//
//   - "mssql"    (reportetl/internal/storage/mssql)
//   - "postgres" (reportetl/internal/storage/postgres)
//   - "mysql"    (reportetl/internal/storage/mysql)
//   - "sqlite"   (reportetl/internal/storage/sqlite)
package all

import (
	_ "reportetl/internal/storage/mssql"
	_ "reportetl/internal/storage/mysql"
	_ "reportetl/internal/storage/postgres"
	_ "reportetl/internal/storage/sqlite"
)
