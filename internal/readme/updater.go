package readme

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

const (
	readmeNotFoundMessageConstant          = "README not found"
	fileSystemNotConfiguredMessageConstant = "README file system not configured"
	readmeReadErrorTemplateConstant        = "unable to read README %s: %w"
	readmeStatErrorTemplateConstant        = "unable to inspect README %s: %w"
	readmeWriteErrorTemplateConstant       = "unable to write README %s: %w"
	readmeSpliceErrorTemplateConstant      = "unable to update README %s: %w"
	readmeNotFoundErrorTemplateConstant    = "%w: %s"
	defaultReadmePermissions               = os.FileMode(0o644)
)

var (
	// ErrReadmeNotFound indicates the README path does not exist.
	ErrReadmeNotFound = errors.New(readmeNotFoundMessageConstant)
	// ErrFileSystemNotConfigured indicates the updater was constructed without a file system.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
)

// UpdateStatus describes what an update did to the README.
type UpdateStatus string

// Update statuses.
const (
	UpdateStatusUpdated   UpdateStatus = UpdateStatus("updated")
	UpdateStatusUnchanged UpdateStatus = UpdateStatus("unchanged")
	UpdateStatusDryRun    UpdateStatus = UpdateStatus("dry_run")
)

// UpdaterSettings tunes how the updater decides whether to write.
type UpdaterSettings struct {
	// IgnoreTimestampChanges treats content differing only in generation timestamps as unchanged.
	IgnoreTimestampChanges bool
	// DryRun splices in memory and never writes.
	DryRun bool
}

// UpdateResult reports the outcome of a README update.
type UpdateResult struct {
	Path          string
	Status        UpdateStatus
	RegionContent string
}

// Updater splices region content into README files.
type Updater struct {
	fileSystem afero.Fs
	settings   UpdaterSettings
}

// NewUpdater constructs an Updater over fileSystem.
func NewUpdater(fileSystem afero.Fs, settings UpdaterSettings) (*Updater, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &Updater{fileSystem: fileSystem, settings: settings}, nil
}

// Update replaces region of the README at path with body.
func (updater *Updater) Update(executionContext context.Context, path string, region Region, body string) (UpdateResult, error) {
	result := UpdateResult{
		Path:          path,
		RegionContent: region.StartMarker + regionLineBreakConstant + body + regionLineBreakConstant + region.EndMarker,
	}

	if contextError := executionContext.Err(); contextError != nil {
		return result, contextError
	}

	fileInfo, statError := updater.fileSystem.Stat(path)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return result, fmt.Errorf(readmeNotFoundErrorTemplateConstant, ErrReadmeNotFound, path)
		}
		return result, fmt.Errorf(readmeStatErrorTemplateConstant, path, statError)
	}

	originalContent, readError := afero.ReadFile(updater.fileSystem, path)
	if readError != nil {
		return result, fmt.Errorf(readmeReadErrorTemplateConstant, path, readError)
	}

	updatedContent, spliceError := Splice(string(originalContent), region, body)
	if spliceError != nil {
		return result, fmt.Errorf(readmeSpliceErrorTemplateConstant, path, spliceError)
	}

	if updater.equivalent(string(originalContent), updatedContent) {
		result.Status = UpdateStatusUnchanged
		return result, nil
	}

	if updater.settings.DryRun {
		result.Status = UpdateStatusDryRun
		return result, nil
	}

	if contextError := executionContext.Err(); contextError != nil {
		return result, contextError
	}

	permissions := fileInfo.Mode().Perm()
	if permissions == 0 {
		permissions = defaultReadmePermissions
	}
	if writeError := afero.WriteFile(updater.fileSystem, path, []byte(updatedContent), permissions); writeError != nil {
		return result, fmt.Errorf(readmeWriteErrorTemplateConstant, path, writeError)
	}

	result.Status = UpdateStatusUpdated
	return result, nil
}

func (updater *Updater) equivalent(originalContent string, updatedContent string) bool {
	if originalContent == updatedContent {
		return true
	}
	if !updater.settings.IgnoreTimestampChanges {
		return false
	}
	return maskGenerationTimestamps(originalContent) == maskGenerationTimestamps(updatedContent)
}
