package main

// General API documentation for swaggo. Regenerate docs/ with
// `swag init -g cmd/extractd/docs.go`.
//
// @title           extractd API
// @version         1.0
// @description     Extracts a taxpayer id (ИНН) and a full name (ФИО) from Russian free text.
//
// @contact.name   extractd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
