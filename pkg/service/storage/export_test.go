package storage

var S3PublicBase = s3PublicBase
