// Package all registers every document store implementation.
package all

import (
	_ "reportetl/internal/docstore/local"
	_ "reportetl/internal/docstore/sharepoint"
)
