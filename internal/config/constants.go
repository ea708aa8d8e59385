package config

import "time"

// DefaultDatabasePath is the default path for the application database
const DefaultDatabasePath = "./manhua.sqlite"

// SessionLifetime is how long an issued session token stays valid.
const SessionLifetime = 7 * 24 * time.Hour

// DefaultBcryptCost is the bcrypt cost factor used for password hashing.
const DefaultBcryptCost = 10
