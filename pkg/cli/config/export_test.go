package config

// NewFormForTest creates a Form config for testing purposes
func NewFormForTest(path string, allowedEmails ...string) *Form {
	return &Form{path: path, allowedEmails: allowedEmails}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend string) *Repository {
	return &Repository{backend: backend, sheetName: "HLP_Responses"}
}

// NewSessionForTest creates a Session config for testing purposes
func NewSessionForTest(backend, redisURL string) *Session {
	return &Session{backend: backend, redisURL: redisURL, keyPrefix: "test:"}
}

// NewClaimsForTest creates a Claims config for testing purposes
func NewClaimsForTest(path, delimiter string) *Claims {
	return &Claims{path: path, delimiter: delimiter}
}
