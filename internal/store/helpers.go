package store

// maxListLimit is a cap on limit values for list queries.
const maxListLimit = 1000
