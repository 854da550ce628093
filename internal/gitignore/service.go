package gitignore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/githubcli"
)

const (
	loggerNotConfiguredMessageConstant     = "gitignore logger not configured"
	fileSystemNotConfiguredMessageConstant = "gitignore filesystem not configured"
	clientNotConfiguredMessageConstant     = "gitignore GitHub client not configured"
	outputNotConfiguredMessageConstant     = "gitignore output not configured"
	readFileErrorTemplateConstant          = "read %s: %w"
	inspectRootErrorTemplateConstant       = "inspect root %s: %w"
	writeFileErrorTemplateConstant         = "write %s: %w"
	rootNotDirectoryTemplateConstant       = "%s is not a directory"
	addedPatternTemplateConstant           = "Added '%s' to .gitignore\n"
	upToDateTemplateConstant               = "%s already contains every recommended pattern.\n"
	updatingRemoteTemplateConstant         = "Updating .gitignore in %s\n"
	creatingRemoteTemplateConstant         = "Creating .gitignore in %s\n"
	patternsAddedMessageConstant           = "Added patterns to .gitignore"
	upToDateMessageConstant                = "gitignore already up to date"
	logFieldPathConstant                   = "path"
	logFieldRepositoryConstant             = "repository"
	logFieldBranchConstant                 = "branch"
	logFieldAddedConstant                  = "added"
	gitignoreFilePermissions               = 0o644
)

var (
	// ErrLoggerNotConfigured indicates the service was constructed without a logger.
	ErrLoggerNotConfigured     = errors.New(loggerNotConfiguredMessageConstant)
	// ErrFileSystemNotConfigured indicates a local run without a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
	// ErrClientNotConfigured indicates a remote run without a GitHub client.
	ErrClientNotConfigured     = errors.New(clientNotConfiguredMessageConstant)
	// ErrOutputNotConfigured indicates the service was constructed without an output writer.
	ErrOutputNotConfigured     = errors.New(outputNotConfiguredMessageConstant)
)

// ContentClient is the subset of githubcli.Client used for remote .gitignore updates.
type ContentClient interface {
	GetFileContent(executionContext context.Context, repository string, filePath string, branch string) (githubcli.FileContent, error)
	PutFileContent(executionContext context.Context, repository string, update githubcli.FileUpdate) error
}

// RemoteOptions identifies the repository branch whose .gitignore is optimized.
type RemoteOptions struct {
	Repository string
	Branch     string
	Message    string
	Patterns   []string
}

// Service merges recommended patterns into .gitignore files.
type Service struct {
	logger     *zap.Logger
	fileSystem afero.Fs
	client     ContentClient
	output     io.Writer
}

// NewService constructs a Service. The filesystem is required only for local runs and the client only for remote runs.
func NewService(logger *zap.Logger, fileSystem afero.Fs, client ContentClient, output io.Writer) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if output == nil {
		return nil, ErrOutputNotConfigured
	}
	return &Service{logger: logger, fileSystem: fileSystem, client: client, output: output}, nil
}

// OptimizeLocal appends the missing patterns to root/.gitignore, creating it when absent, and returns what was added.
func (service *Service) OptimizeLocal(root string, patterns []string) ([]string, error) {
	if service.fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	rootInfo, statError := service.fileSystem.Stat(root)
	if statError != nil {
		return nil, fmt.Errorf(inspectRootErrorTemplateConstant, root, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(rootNotDirectoryTemplateConstant, root)
	}

	gitignorePath := filepath.Join(root, FileName)
	existing, readError := afero.ReadFile(service.fileSystem, gitignorePath)
	if readError != nil && !errors.Is(readError, os.ErrNotExist) {
		return nil, fmt.Errorf(readFileErrorTemplateConstant, gitignorePath, readError)
	}

	additions := MissingPatterns(existing, patterns)
	if len(additions) == 0 {
		service.logger.Info(upToDateMessageConstant, zap.String(logFieldPathConstant, gitignorePath))
		fmt.Fprintf(service.output, upToDateTemplateConstant, gitignorePath)
		return additions, nil
	}

	if writeError := afero.WriteFile(service.fileSystem, gitignorePath, AppendPatterns(existing, additions), gitignoreFilePermissions); writeError != nil {
		return nil, fmt.Errorf(writeFileErrorTemplateConstant, gitignorePath, writeError)
	}
	service.reportAdditions(additions, zap.String(logFieldPathConstant, gitignorePath))
	return additions, nil
}

// OptimizeRemote applies the same merge to the branch's .gitignore through the contents API, creating the file when absent.
func (service *Service) OptimizeRemote(executionContext context.Context, options RemoteOptions) ([]string, error) {
	if service.client == nil {
		return nil, ErrClientNotConfigured
	}

	existing, lookupError := service.client.GetFileContent(executionContext, options.Repository, FileName, options.Branch)
	exists := lookupError == nil
	if lookupError != nil && !githubcli.IsNotFound(lookupError) {
		return nil, lookupError
	}

	additions := MissingPatterns(existing.Content, options.Patterns)
	if len(additions) == 0 {
		service.logger.Info(upToDateMessageConstant, zap.String(logFieldRepositoryConstant, options.Repository), zap.String(logFieldBranchConstant, options.Branch))
		fmt.Fprintf(service.output, upToDateTemplateConstant, options.Repository+":"+FileName)
		return additions, nil
	}

	if exists {
		fmt.Fprintf(service.output, updatingRemoteTemplateConstant, options.Repository)
	} else {
		fmt.Fprintf(service.output, creatingRemoteTemplateConstant, options.Repository)
	}

	updateError := service.client.PutFileContent(executionContext, options.Repository, githubcli.FileUpdate{
		Path:    FileName,
		Branch:  options.Branch,
		Message: options.Message,
		Content: AppendPatterns(existing.Content, additions),
		SHA:     existing.SHA,
	})
	if updateError != nil {
		return nil, updateError
	}
	service.reportAdditions(additions, zap.String(logFieldRepositoryConstant, options.Repository), zap.String(logFieldBranchConstant, options.Branch))
	return additions, nil
}

func (service *Service) reportAdditions(additions []string, fields ...zap.Field) {
	for _, pattern := range additions {
		fmt.Fprintf(service.output, addedPatternTemplateConstant, pattern)
	}
	service.logger.Info(patternsAddedMessageConstant, append(fields, zap.Strings(logFieldAddedConstant, additions))...)
}
