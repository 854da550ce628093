package githubcli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/temirov/repo-cleaner/internal/execshell"
	"github.com/temirov/repo-cleaner/internal/githubauth"
)

const (
	apiSubcommandConstant                   = "api"
	paginateFlagConstant                    = "--paginate"
	methodFlagConstant                      = "-X"
	fieldFlagConstant                       = "-f"
	typedFieldFlagConstant                  = "-F"
	inputFlagConstant                       = "--input"
	stdinReferenceConstant                  = "-"
	acceptHeaderFlagConstant                = "-H"
	acceptHeaderValueConstant               = "Accept: application/vnd.github+json"
	httpMethodDeleteConstant                = "DELETE"
	httpMethodPatchConstant                 = "PATCH"
	httpMethodPutConstant                   = "PUT"
	closedStateFieldConstant                = "state=closed"
	archivedFieldConstant                   = "archived=true"
	repositoryEndpointTemplateConstant      = "repos/%s"
	branchesEndpointTemplateConstant        = "repos/%s/branches?per_page=100"
	commitEndpointTemplateConstant          = "repos/%s/commits/%s"
	branchReferenceEndpointTemplateConstant = "repos/%s/git/refs/heads/%s"
	tagsEndpointTemplateConstant            = "repos/%s/tags?per_page=100"
	tagReferenceEndpointTemplateConstant    = "repos/%s/git/refs/tags/%s"
	pullRequestEndpointTemplateConstant     = "repos/%s/pulls/%d"
	contentsEndpointTemplateConstant        = "repos/%s/contents/%s"
	contentsReferenceQueryTemplateConstant  = "%s?ref=%s"
	repositoryFieldNameConstant             = "repository"
	branchFieldNameConstant                 = "branch"
	tagFieldNameConstant                    = "tag"
	commitFieldNameConstant                 = "commit"
	pathFieldNameConstant                   = "path"
	pullRequestFieldNameConstant            = "pull_request"
	shaFieldNameConstant                    = "sha"
	messageFieldNameConstant                = "message"
	requiredValueMessageConstant            = "value required"
	repositoryFormatMessageConstant         = "expected owner/name"
	positiveNumberMessageConstant           = "must be a positive number"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	contentNotFoundMessageConstant          = "content not found"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant    = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	notFoundStatusMarkerConstant            = "HTTP 404"
	repositorySeparatorConstant             = "/"
	base64LineBreakConstant                 = "\n"
	repositoryMetadataOperationNameConstant = OperationName("ResolveRepoMetadata")
	listBranchesOperationNameConstant       = OperationName("ListBranches")
	resolveCommitDateOperationNameConstant  = OperationName("ResolveCommitDate")
	deleteBranchOperationNameConstant       = OperationName("DeleteBranch")
	listTagsOperationNameConstant           = OperationName("ListTags")
	deleteTagOperationNameConstant          = OperationName("DeleteTag")
	closePullRequestOperationNameConstant   = OperationName("ClosePullRequest")
	archiveRepositoryOperationNameConstant  = OperationName("ArchiveRepository")
	getFileContentOperationNameConstant     = OperationName("GetFileContent")
	putFileContentOperationNameConstant     = OperationName("PutFileContent")
	deleteFileOperationNameConstant         = OperationName("DeleteFile")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	Description   string
	DefaultBranch string
	Archived      bool
}

// Branch describes a remote branch and its head commit.
type Branch struct {
	Name      string
	CommitSHA string
	Protected bool
}

// Tag describes a remote tag and the commit it points at.
type Tag struct {
	Name      string
	CommitSHA string
}

// FileContent is a file read through the contents API.
type FileContent struct {
	Path    string
	SHA     string
	Content []byte
}

// FileUpdate describes a create-or-update request for the contents API.
// SHA must carry the current blob SHA when the file already exists.
type FileUpdate struct {
	Path    string
	Branch  string
	Message string
	Content []byte
	SHA     string
}

// FileDeletion describes a delete request for the contents API.
type FileDeletion struct {
	Path    string
	Branch  string
	Message string
	SHA     string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor            GitHubCommandExecutor
	authenticationToken string
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrContentNotFound indicates the contents API returned 404 for the requested path.
	ErrContentNotFound       = errors.New(contentNotFoundMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// NewClient constructs a GitHub CLI client. A non-empty authentication token is
// handed to gh through GH_TOKEN; otherwise gh falls back to its stored login.
func NewClient(executor GitHubCommandExecutor, authenticationToken string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor, authenticationToken: strings.TrimSpace(authenticationToken)}, nil
}

// ResolveRepoMetadata retrieves canonical metadata for a repository.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	repositoryIdentifier, validationError := validateRepository(repository)
	if validationError != nil {
		return RepositoryMetadata{}, validationError
	}

	executionResult, executionError := client.execute(executionContext, []string{
		apiSubcommandConstant,
		fmt.Sprintf(repositoryEndpointTemplateConstant, repositoryIdentifier),
	}, nil)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: repositoryMetadataOperationNameConstant, Cause: executionError}
	}

	var response struct {
		FullName      string `json:"full_name"`
		Description   string `json:"description"`
		DefaultBranch string `json:"default_branch"`
		Archived      bool   `json:"archived"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.FullName,
		Description:   response.Description,
		DefaultBranch: response.DefaultBranch,
		Archived:      response.Archived,
	}, nil
}

// ListBranches enumerates every branch of the repository across all result pages.
func (client *Client) ListBranches(executionContext context.Context, repository string) ([]Branch, error) {
	repositoryIdentifier, validationError := validateRepository(repository)
	if validationError != nil {
		return nil, validationError
	}

	executionResult, executionError := client.execute(executionContext, []string{
		apiSubcommandConstant,
		fmt.Sprintf(branchesEndpointTemplateConstant, repositoryIdentifier),
		paginateFlagConstant,
	}, nil)
	if executionError != nil {
		return nil, OperationError{Operation: listBranchesOperationNameConstant, Cause: executionError}
	}

	type branchEntry struct {
		Name   string `json:"name"`
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
		Protected bool `json:"protected"`
	}

	entries, decodingError := decodePaginatedArrays[branchEntry](executionResult.StandardOutput)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listBranchesOperationNameConstant, Cause: decodingError}
	}

	branches := make([]Branch, 0, len(entries))
	for _, entry := range entries {
		branches = append(branches, Branch{Name: entry.Name, CommitSHA: entry.Commit.SHA, Protected: entry.Protected})
	}
	return branches, nil
}

// ResolveCommitDate returns the committer date of the referenced commit.
func (client *Client) ResolveCommitDate(executionContext context.Context, repository string, commitReference string) (time.Time, error) {
	repositoryIdentifier, validationError := validateRepository(repository)
	if validationError != nil {
		return time.Time{}, validationError
	}
	trimmedReference := strings.TrimSpace(commitReference)
	if len(trimmedReference) == 0 {
		return time.Time{}, InvalidInputError{FieldName: commitFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := client.execute(executionContext, []string{
		apiSubcommandConstant,
		fmt.Sprintf(commitEndpointTemplateConstant, repositoryIdentifier, trimmedReference),
	}, nil)
	if executionError != nil {
		return time.Time{}, OperationError{Operation: resolveCommitDateOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Commit struct {
			Committer struct {
				Date time.Time `json:"date"`
			} `json:"committer"`
		} `json:"commit"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return time.Time{}, ResponseDecodingError{Operation: resolveCommitDateOperationNameConstant, Cause: decodingError}
	}
	return response.Commit.Committer.Date, nil
}

// DeleteBranch removes the branch reference from the repository.
func (client *Client) DeleteBranch(executionContext context.Context, repository string, branchName string) error {
	return client.deleteReference(executionContext, repository, branchName, branchFieldNameConstant, branchReferenceEndpointTemplateConstant, deleteBranchOperationNameConstant)
}

// ListTags enumerates every tag of the repository across all result pages.
func (client *Client) ListTags(executionContext context.Context, repository string) ([]Tag, error) {
	repositoryIdentifier, validationError := validateRepository(repository)
	if validationError != nil {
		return nil, validationError
	}

	executionResult, executionError := client.execute(executionContext, []string{
		apiSubcommandConstant,
		fmt.Sprintf(tagsEndpointTemplateConstant, repositoryIdentifier),
		paginateFlagConstant,
	}, nil)
	if executionError != nil {
		return nil, OperationError{Operation: listTagsOperationNameConstant, Cause: executionError}
	}

	type tagEntry struct {
		Name   string `json:"name"`
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
	}

	entries, decodingError := decodePaginatedArrays[tagEntry](executionResult.StandardOutput)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listTagsOperationNameConstant, Cause: decodingError}
	}

	tags := make([]Tag, 0, len(entries))
	for _, entry := range entries {
		tags = append(tags, Tag{Name: entry.Name, CommitSHA: entry.Commit.SHA})
	}
	return tags, nil
}

// DeleteTag removes the tag reference from the repository.
func (client *Client) DeleteTag(executionContext context.Context, repository string, tagName string) error {
	return client.deleteReference(executionContext, repository, tagName, tagFieldNameConstant, tagReferenceEndpointTemplateConstant, deleteTagOperationNameConstant)
}

// ClosePullRequest marks the pull request as closed without merging it.
func (client *Client) ClosePullRequest(executionContext context.Context, repository string, pullRequestNumber int) error {
	repositoryIdentifier, validationError := validateRepository(repository)
	if validationError != nil {
		return validationError
	}
	if pullRequestNumber <= 0 {
		return InvalidInputError{FieldName: pullRequestFieldNameConstant, Message: positiveNumberMessageConstant}
	}

	_, executionError := client.execute(executionContext, []string{
		apiSubcommandConstant,
		fmt.Sprintf(pullRequestEndpointTemplateConstant, repositoryIdentifier, pullRequestNumber),
		methodFlagConstant,
		httpMethodPatchConstant,
		fieldFlagConstant,
		closedStateFieldConstant,
	}, nil)
	if executionError != nil {
		return OperationError{Operation: closePullRequestOperationNameConstant, Cause: executionError}
	}
	return nil
}

// ArchiveRepository marks the repository as archived.
func (client *Client) ArchiveRepository(executionContext context.Context, repository string) error {
	repositoryIdentifier, validationError := validateRepository(repository)
	if validationError != nil {
		return validationError
	}

	_, executionError := client.execute(executionContext, []string{
		apiSubcommandConstant,
		fmt.Sprintf(repositoryEndpointTemplateConstant, repositoryIdentifier),
		methodFlagConstant,
		httpMethodPatchConstant,
		typedFieldFlagConstant,
		archivedFieldConstant,
	}, nil)
	if executionError != nil {
		return OperationError{Operation: archiveRepositoryOperationNameConstant, Cause: executionError}
	}
	return nil
}

// GetFileContent reads a file through the contents API. An empty branch reads the default branch.
// A missing file yields an OperationError wrapping ErrContentNotFound.
func (client *Client) GetFileContent(executionContext context.Context, repository string, filePath string, branch string) (FileContent, error) {
	repositoryIdentifier, validationError := validateRepository(repository)
	if validationError != nil {
		return FileContent{}, validationError
	}
	trimmedPath, pathError := validatePath(filePath)
	if pathError != nil {
		return FileContent{}, pathError
	}

	endpoint := fmt.Sprintf(contentsEndpointTemplateConstant, repositoryIdentifier, trimmedPath)
	if trimmedBranch := strings.TrimSpace(branch); len(trimmedBranch) > 0 {
		endpoint = fmt.Sprintf(contentsReferenceQueryTemplateConstant, endpoint, url.QueryEscape(trimmedBranch))
	}

	executionResult, executionError := client.execute(executionContext, []string{apiSubcommandConstant, endpoint}, nil)
	if executionError != nil {
		if isNotFound(executionError) {
			return FileContent{}, OperationError{Operation: getFileContentOperationNameConstant, Cause: ErrContentNotFound}
		}
		return FileContent{}, OperationError{Operation: getFileContentOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Path    string `json:"path"`
		SHA     string `json:"sha"`
		Content string `json:"content"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return FileContent{}, ResponseDecodingError{Operation: getFileContentOperationNameConstant, Cause: decodingError}
	}

	decodedContent, base64Error := base64.StdEncoding.DecodeString(strings.ReplaceAll(response.Content, base64LineBreakConstant, ""))
	if base64Error != nil {
		return FileContent{}, ResponseDecodingError{Operation: getFileContentOperationNameConstant, Cause: base64Error}
	}

	return FileContent{Path: response.Path, SHA: response.SHA, Content: decodedContent}, nil
}

// PutFileContent creates or replaces a file through the contents API.
func (client *Client) PutFileContent(executionContext context.Context, repository string, update FileUpdate) error {
	repositoryIdentifier, validationError := validateRepository(repository)
	if validationError != nil {
		return validationError
	}
	trimmedPath, pathError := validatePath(update.Path)
	if pathError != nil {
		return pathError
	}
	if len(strings.TrimSpace(update.Message)) == 0 {
		return InvalidInputError{FieldName: messageFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha,omitempty"`
		Branch  string `json:"branch,omitempty"`
	}{
		Message: update.Message,
		Content: base64.StdEncoding.EncodeToString(update.Content),
		SHA:     strings.TrimSpace(update.SHA),
		Branch:  strings.TrimSpace(update.Branch),
	}

	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return PayloadEncodingError{Operation: putFileContentOperationNameConstant, Cause: encodingError}
	}

	_, executionError := client.execute(executionContext, []string{
		apiSubcommandConstant,
		fmt.Sprintf(contentsEndpointTemplateConstant, repositoryIdentifier, trimmedPath),
		methodFlagConstant,
		httpMethodPutConstant,
		inputFlagConstant,
		stdinReferenceConstant,
		acceptHeaderFlagConstant,
		acceptHeaderValueConstant,
	}, payloadBytes)
	if executionError != nil {
		return OperationError{Operation: putFileContentOperationNameConstant, Cause: executionError}
	}
	return nil
}

// DeleteFile removes a file through the contents API.
func (client *Client) DeleteFile(executionContext context.Context, repository string, deletion FileDeletion) error {
	repositoryIdentifier, validationError := validateRepository(repository)
	if validationError != nil {
		return validationError
	}
	trimmedPath, pathError := validatePath(deletion.Path)
	if pathError != nil {
		return pathError
	}
	if len(strings.TrimSpace(deletion.SHA)) == 0 {
		return InvalidInputError{FieldName: shaFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(deletion.Message)) == 0 {
		return InvalidInputError{FieldName: messageFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Message string `json:"message"`
		SHA     string `json:"sha"`
		Branch  string `json:"branch,omitempty"`
	}{
		Message: deletion.Message,
		SHA:     strings.TrimSpace(deletion.SHA),
		Branch:  strings.TrimSpace(deletion.Branch),
	}

	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return PayloadEncodingError{Operation: deleteFileOperationNameConstant, Cause: encodingError}
	}

	_, executionError := client.execute(executionContext, []string{
		apiSubcommandConstant,
		fmt.Sprintf(contentsEndpointTemplateConstant, repositoryIdentifier, trimmedPath),
		methodFlagConstant,
		httpMethodDeleteConstant,
		inputFlagConstant,
		stdinReferenceConstant,
	}, payloadBytes)
	if executionError != nil {
		return OperationError{Operation: deleteFileOperationNameConstant, Cause: executionError}
	}
	return nil
}

// IsNotFound reports whether the error chain carries a GitHub 404 response.
func IsNotFound(candidate error) bool {
	return errors.Is(candidate, ErrContentNotFound) || isNotFound(candidate)
}

func (client *Client) deleteReference(executionContext context.Context, repository string, referenceName string, fieldName string, endpointTemplate string, operation OperationName) error {
	repositoryIdentifier, validationError := validateRepository(repository)
	if validationError != nil {
		return validationError
	}
	trimmedName := strings.TrimSpace(referenceName)
	if len(trimmedName) == 0 {
		return InvalidInputError{FieldName: fieldName, Message: requiredValueMessageConstant}
	}

	_, executionError := client.execute(executionContext, []string{
		apiSubcommandConstant,
		fmt.Sprintf(endpointTemplate, repositoryIdentifier, trimmedName),
		methodFlagConstant,
		httpMethodDeleteConstant,
	}, nil)
	if executionError != nil {
		return OperationError{Operation: operation, Cause: executionError}
	}
	return nil
}

func (client *Client) execute(executionContext context.Context, arguments []string, standardInput []byte) (execshell.ExecutionResult, error) {
	commandDetails := execshell.CommandDetails{Arguments: arguments, StandardInput: standardInput}
	if len(client.authenticationToken) > 0 {
		commandDetails.EnvironmentVariables = map[string]string{githubauth.EnvGitHubCLIToken: client.authenticationToken}
	}
	return client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
}

func validateRepository(repository string) (string, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	owner, name, found := strings.Cut(repositoryIdentifier, repositorySeparatorConstant)
	if !found || len(owner) == 0 || len(name) == 0 || strings.Contains(name, repositorySeparatorConstant) {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: repositoryFormatMessageConstant}
	}
	return repositoryIdentifier, nil
}

func validatePath(filePath string) (string, error) {
	trimmedPath := strings.Trim(strings.TrimSpace(filePath), repositorySeparatorConstant)
	if len(trimmedPath) == 0 {
		return "", InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return trimmedPath, nil
}

func isNotFound(candidate error) bool {
	var failedError execshell.CommandFailedError
	if !errors.As(candidate, &failedError) {
		return false
	}
	return strings.Contains(failedError.Result.StandardError, notFoundStatusMarkerConstant)
}

// decodePaginatedArrays reads the concatenated JSON arrays gh api --paginate prints, one per page.
func decodePaginatedArrays[Entry any](output string) ([]Entry, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(output)))
	entries := make([]Entry, 0)
	for {
		var page []Entry
		decodingError := decoder.Decode(&page)
		if errors.Is(decodingError, io.EOF) {
			return entries, nil
		}
		if decodingError != nil {
			return nil, decodingError
		}
		entries = append(entries, page...)
	}
}

