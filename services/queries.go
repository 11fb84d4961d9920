package services

import "fmt"

// eligibilityCutoff: ältere Datensätze ohne spätere Änderung sind in keiner Sicht enthalten.
const eligibilityCutoff = "2015-01-01 00:00:00"

const receptionJoins = `FROM recepthead
LEFT JOIN exechead ON recepthead.receptno = exechead.receptno
LEFT JOIN m_ctitem AS cond_item ON exechead.condition = cond_item.itemcd
LEFT JOIN receptbody ON recepthead.receptno = receptbody.receptno
LEFT JOIN execbody ON recepthead.receptno = execbody.receptno
LEFT JOIN m_ctitem AS stype_item ON exechead.stype = stype_item.itemcd
LEFT JOIN m_ctitem AS prod_item ON exechead.producttype = prod_item.itemcd`

// eligibility ist das feste, nicht optionale Prädikat aller Abfragen.
var eligibility = fmt.Sprintf(`WHERE recepthead.extentid IS NOT NULL
AND recepthead.extentid != 0
AND (
    recepthead.calldt >= '%[1]s'
    OR receptbody.moddt >= '%[1]s'
)`, eligibilityCutoff)

const recordSelect = `recepthead.extentid AS id,
    receptbody.rdata AS content,
    COALESCE(execbody.execstate, '') AS status,
    COALESCE(execbody.execresult, '') AS result,
    COALESCE(execbody.execinfo, '') AS report,
    cond_item.itemname AS progress,
    stype_item.itemname AS system_type,
    prod_item.itemname AS product,
    recepthead.receptmoddt AS reception_moddt,
    recepthead.calldt AS reception_datetime,
    COALESCE(receptbody.moddt, recepthead.calldt) AS update_datetime`

func listQuery(where, orderBy string) string {
	return fmt.Sprintf("SELECT\n    %s\n%s\n%s\n%s\nORDER BY %s\nLIMIT ? OFFSET ?",
		recordSelect, receptionJoins, eligibility, where, orderBy)
}

func countQuery(where string) string {
	return fmt.Sprintf("SELECT COUNT(*)\n%s\n%s\n%s", receptionJoins, eligibility, where)
}

func idQuery(where string) string {
	return fmt.Sprintf("SELECT recepthead.extentid AS id\n%s\n%s\n%s\nORDER BY recepthead.extentid",
		receptionJoins, eligibility, where)
}

// optionQueries liefern die eindeutigen Werte der Nachschlagefelder.
const (
	progressOptionsQuery = `SELECT DISTINCT cond_item.itemname
FROM m_ctitem AS cond_item
JOIN exechead ON exechead.condition = cond_item.itemcd
WHERE cond_item.itemname IS NOT NULL
ORDER BY cond_item.itemname`

	systemTypeOptionsQuery = `SELECT DISTINCT stype_item.itemname
FROM m_ctitem AS stype_item
JOIN exechead ON exechead.stype = stype_item.itemcd
WHERE stype_item.itemname IS NOT NULL
ORDER BY stype_item.itemname`

	productOptionsQuery = `SELECT DISTINCT prod_item.itemname
FROM m_ctitem AS prod_item
JOIN exechead ON exechead.producttype = prod_item.itemcd
WHERE prod_item.itemname IS NOT NULL
ORDER BY prod_item.itemname`
)

const (
	softDeleteStatement = `UPDATE recepthead
SET receptmoddt = ?
WHERE extentid = ANY(?)
AND receptmoddt IS NULL`

	restoreStatement = `UPDATE recepthead
SET receptmoddt = NULL
WHERE extentid = ANY(?)
AND receptmoddt IS NOT NULL`
)
