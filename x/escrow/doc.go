/*
Package escrow implements the custody of funds bound to a job.

A custody record holds exactly the amount locked for a single job. The
coins themselves are kept in a cash wallet owned by a condition derived
from the custody key. Nobody owns a private key for that condition, so the
funds can leave only through the Controller, which releases everything to
the worker or refunds everything to the employer exactly once.
*/
package escrow
