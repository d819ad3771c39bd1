package mysql

const insertEventSQL = `
INSERT INTO analytics_events
  (category, action, client_id, country, language, user_agent, ip, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
`

const recentEventsSQL = `
SELECT category, action, client_id, country, language, user_agent, ip, created_at
FROM analytics_events
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const countEventsSQL = `
SELECT COUNT(*)
FROM analytics_events
WHERE (? = '' OR category = ?)
  AND (? = '' OR action = ?)
`

// A review re-imported into the same product refreshes the existing row
// instead of duplicating it.
const upsertImportSQL = `
INSERT INTO imported_reviews
  (review_id, product_id, session_id, platform, quality_score)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  session_id    = VALUES(session_id),
  platform      = VALUES(platform),
  quality_score = VALUES(quality_score),
  imported_at   = CURRENT_TIMESTAMP
`
