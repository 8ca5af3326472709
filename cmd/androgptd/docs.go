package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           AndroGPT API
// @version         1.0
// @description     HTTP API for local LLM model management and text generation.
//
// @contact.name   AndroGPT maintainers
// @contact.url    https://github.com/yaser0004/AndroGPT
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
