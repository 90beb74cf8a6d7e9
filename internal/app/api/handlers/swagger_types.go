package handlers

import "github.com/petrelhq/petrel/pkg/response"

// RespOK exists only so swag has a concrete envelope type to reference.
type RespOK = response.APIResponse[any]
