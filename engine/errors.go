package engine

import "errors"

var ErrDefinitionNotFound = errors.New("workflow definition not found")
var ErrInstanceNotFound = errors.New("workflow instance not found")
var ErrTaskNotFound = errors.New("workflow task not found")
var ErrTaskAlreadyCompleted = errors.New("task already completed")
var ErrConcurrentModification = errors.New("concurrent modification of workflow instance")
var ErrNotAuthorized = errors.New("user not authorized to complete task")
