package dialect

import "fmt"

// MySQL targets MySQL and MariaDB.
type MySQL struct{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) Quote(ident string) string { return quoteWith(ident, "`") }

func (MySQL) GroupConcat(expr, orderBy, sep string) string {
	return fmt.Sprintf("GROUP_CONCAT(%s ORDER BY %s SEPARATOR %s)", expr, orderBy, Literal(sep))
}

func (MySQL) ListContains(list, item string) string {
	return fmt.Sprintf("FIND_IN_SET(%s, %s) > 0", item, list)
}

func (MySQL) ListPosition(list, item string) string {
	return fmt.Sprintf("FIND_IN_SET(%s, %s)", item, list)
}

func (MySQL) OrderByIDs(expr string, ids []int64) string {
	return fmt.Sprintf("FIELD(%s, %s)", expr, IDList(ids))
}
