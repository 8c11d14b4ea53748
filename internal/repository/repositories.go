package repository

// Repositories is a container for all repository instances.
//
// One container is built per request around that request's Executor, so
// every repository in it shares the same pooled connection.
type Repositories struct {
	Artists     *ArtistRepository
	Albums      *AlbumRepository
	Employees   *EmployeeRepository
	Departments *DepartmentRepository
	Projects    *ProjectRepository
}

// NewRepositories wires the repositories and their dependencies on each other.
func NewRepositories(exec Executor) *Repositories {
	albums := NewAlbumRepository(exec)
	departments := NewDepartmentRepository(exec)
	projects := NewProjectRepository(exec)

	return &Repositories{
		Artists:     NewArtistRepository(exec, albums),
		Albums:      albums,
		Employees:   NewEmployeeRepository(exec, departments, projects),
		Departments: departments,
		Projects:    projects,
	}
}
