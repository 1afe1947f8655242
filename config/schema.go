package config

// configSchema is the JSON Schema every config file must satisfy before the
// semantic checks in ValidateConfig run.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "active": { "type": "boolean" },
    "defaults": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "runTimes": { "type": "integer", "minimum": 1 },
        "concurrent": { "type": "boolean" },
        "verbose": { "type": "boolean" },
        "recursionCheck": { "type": "boolean" }
      }
    },
    "report": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "color": { "type": "string", "enum": ["auto", "always", "never"] }
      }
    },
    "logging": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": { "type": "string" }
      }
    }
  }
}`
