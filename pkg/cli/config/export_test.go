package config

// NewAppForTest creates an App config pointing at path
func NewAppForTest(path string) *App {
	return &App{path: path}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(jwksURL, hmacSecret, noAuthSub, noAuthRole string) *Auth {
	return &Auth{
		jwksURL:    jwksURL,
		hmacSecret: hmacSecret,
		noAuthSub:  noAuthSub,
		noAuthRole: noAuthRole,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, postgresURL string) *Repository {
	return &Repository{backend: backend, projectID: projectID, postgresURL: postgresURL}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, bucket, publicBase string) *Storage {
	return &Storage{backend: backend, bucket: bucket, publicBase: publicBase}
}

// NewWorkerForTest creates a Worker config for testing purposes
func NewWorkerForTest(schedule string) *Worker {
	return &Worker{schedule: schedule}
}
