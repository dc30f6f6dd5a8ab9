package schema

import "errors"

var (
	// ErrUnknownField is returned when a name is not declared by the schema.
	ErrUnknownField = errors.New("schema: unknown field")
	// ErrPartialExternal marks a descriptor that declares only part of the
	// external rule and converter pair.
	ErrPartialExternal = errors.New("schema: external rule and both converters must be declared together")
	// ErrMissingRule marks a descriptor without an internal rule.
	ErrMissingRule = errors.New("schema: field has no internal rule")
	// ErrTypeMismatch is returned by typed converters that receive a value of
	// the wrong Go type.
	ErrTypeMismatch = errors.New("schema: value type mismatch")
	// ErrConversion wraps failures raised by converters.
	ErrConversion = errors.New("schema: conversion failed")
)
