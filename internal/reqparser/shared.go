package reqparser

import (
	"github.com/tablegate/tablegate/internal/contenttype"
	"github.com/tablegate/tablegate/internal/fieldkind"
)

const jsonCT = contenttype.JSON
const stringKind = fieldkind.String
