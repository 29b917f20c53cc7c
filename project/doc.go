// Package project loads a DFT project directory into typed models: the
// dft_project.yml file, the .env file, and every pipeline declaration under
// pipelines/. Loading never renders templates; {{ ... }} expression text is
// carried verbatim for the runner to evaluate with the full variable
// context.
package project
